package storage

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"kahani-ai/internal/storage/mocks"
	"kahani-ai/internal/story"
)

func TestCatalog_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStoryStore(ctrl)
	// Loaded once, then served from memory
	store.EXPECT().ListAll(gomock.Any()).Return(testDocs(), nil).Times(1)

	catalog := NewCatalog(store)
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		wantID  string
		wantErr error
	}{
		{name: "exact id", id: "root/zakhmi-parinda", wantID: "root/zakhmi-parinda"},
		{name: "bare name", id: "zakhmi-parinda", wantID: "root/zakhmi-parinda"},
		{name: "underscore variant", id: "zakhmi_parinda", wantID: "root/zakhmi-parinda"},
		{name: "subdirectory", id: "poems/chanda", wantID: "poems/chanda"},
		{name: "unknown", id: "root/unknown", wantErr: ErrNotFound},
		{name: "empty", id: "", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := catalog.Get(ctx, tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Get(%q) error = %v, want %v", tt.id, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get(%q) unexpected error: %v", tt.id, err)
			}
			if doc.ID != tt.wantID {
				t.Errorf("Get(%q) ID = %q, want %q", tt.id, doc.ID, tt.wantID)
			}
		})
	}
}

func TestCatalog_Replace(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStoryStore(ctrl)
	docs := testDocs()[:1]
	store.EXPECT().ReplaceAll(gomock.Any(), docs).Return(nil)

	catalog := NewCatalog(store)
	ctx := context.Background()

	if err := catalog.Replace(ctx, docs); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	// No ListAll expected: Replace fills the cache
	listed, err := catalog.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(listed) != 1 || listed[0].ID != "root/zakhmi-parinda" {
		t.Errorf("List() = %+v", listed)
	}
}

func TestCatalog_ReplaceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStoryStore(ctrl)
	store.EXPECT().ReplaceAll(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	store.EXPECT().ListAll(gomock.Any()).Return([]story.Document{}, nil)

	catalog := NewCatalog(store)
	ctx := context.Background()

	if err := catalog.Replace(ctx, testDocs()); err == nil {
		t.Fatal("Replace() should propagate store error")
	}

	// The cache was not filled by the failed replace
	listed, err := catalog.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("List() after failed replace = %+v, want empty", listed)
	}
}

func TestCatalog_LazyLoadDoesNotOverwriteReplace(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entered := make(chan struct{})
	release := make(chan struct{})
	store := mocks.NewMockStoryStore(ctrl)
	// The lazy load reads the store before the new corpus lands
	store.EXPECT().ListAll(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]story.Document, error) {
		close(entered)
		<-release
		return []story.Document{}, nil
	}).Times(1)
	docs := testDocs()[:1]
	store.EXPECT().ReplaceAll(gomock.Any(), docs).Return(nil)

	catalog := NewCatalog(store)
	ctx := context.Background()

	type result struct {
		doc *story.Document
		err error
	}
	lazy := make(chan result, 1)
	go func() {
		doc, err := catalog.Get(ctx, "root/zakhmi-parinda")
		lazy <- result{doc, err}
	}()
	<-entered

	if err := catalog.Replace(ctx, docs); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	close(release)

	got := <-lazy
	if got.err != nil {
		t.Fatalf("Get() during load error = %v", got.err)
	}
	if got.doc.ID != "root/zakhmi-parinda" {
		t.Errorf("Get() during load ID = %q", got.doc.ID)
	}

	doc, err := catalog.Get(ctx, "root/zakhmi-parinda")
	if err != nil {
		t.Fatalf("Get() after load error = %v", err)
	}
	if doc.ID != "root/zakhmi-parinda" {
		t.Errorf("Get() after load ID = %q", doc.ID)
	}
}
