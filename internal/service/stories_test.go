package service_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"kahani-ai/internal/service"
	"kahani-ai/internal/service/mocks"
	"kahani-ai/internal/storage"
	"kahani-ai/internal/story"
)

func catalogDocs() []story.Document {
	return []story.Document{
		{ID: "poems/chanda", Title: "چندا ماموں", AgeGroup: "3-5", Language: "urdu", Type: story.TypePoem},
		{ID: "root/kitaab", Title: "کتاب", AgeGroup: "5-7", Language: "urdu", Type: story.TypeStory},
		{ID: "root/zakhmi-parinda", Title: "زخمی پرندہ", AgeGroup: "5-7", Language: "urdu", Type: story.TypeStory},
	}
}

func TestStoryService_List(t *testing.T) {
	tests := []struct {
		name    string
		filter  service.StoryFilter
		wantIDs []string
	}{
		{name: "no filter", wantIDs: []string{"poems/chanda", "root/kitaab", "root/zakhmi-parinda"}},
		{name: "age group", filter: service.StoryFilter{AgeGroup: "5-7"}, wantIDs: []string{"root/kitaab", "root/zakhmi-parinda"}},
		{name: "type is case insensitive", filter: service.StoryFilter{Type: "Poem"}, wantIDs: []string{"poems/chanda"}},
		{name: "both filters", filter: service.StoryFilter{AgeGroup: "3-5", Type: "story"}, wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			catalog := mocks.NewMockStoryCatalog(ctrl)
			catalog.EXPECT().List(gomock.Any()).Return(catalogDocs(), nil)

			got, err := service.NewStoryService(catalog).List(testContext(), tt.filter)
			require.NoError(t, err)

			ids := make([]string, 0, len(got))
			for _, l := range got {
				ids = append(ids, l.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestStoryService_ListError(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockStoryCatalog(ctrl)
	dbErr := errors.New("database is locked")
	catalog.EXPECT().List(gomock.Any()).Return(nil, dbErr)

	_, err := service.NewStoryService(catalog).List(testContext(), service.StoryFilter{})
	assert.ErrorIs(t, err, dbErr)
}

func TestStoryService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockStoryCatalog(ctrl)
	svc := service.NewStoryService(catalog)

	doc := catalogDocs()[2]
	catalog.EXPECT().Get(gomock.Any(), "zakhmi_parinda").Return(&doc, nil)
	catalog.EXPECT().Get(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)

	got, err := svc.Get(testContext(), "zakhmi_parinda")
	require.NoError(t, err)
	assert.Equal(t, "root/zakhmi-parinda", got.ID)

	_, err = svc.Get(testContext(), "missing")
	assert.ErrorIs(t, err, service.ErrNotFound)
	var notFound *service.StoryNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.ID)

	_, err = svc.Get(testContext(), " ")
	var validationErr *service.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
