package service_test

import (
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"kahani-ai/internal/rag"
	"kahani-ai/internal/service"
	"kahani-ai/internal/service/mocks"
)

func TestAskService_Ask(t *testing.T) {
	tests := []struct {
		name         string
		req          service.AskRequest
		mockSetup    func(*mocks.MockAnswerer)
		wantErr      bool
		checkErrType func(error) bool
		wantAnswer   rag.Answer
	}{
		{
			name: "answered",
			req:  service.AskRequest{Question: "  کہانی کا سبق کیا ہے؟ ", StoryID: " root/zakhmi-parinda "},
			mockSetup: func(m *mocks.MockAnswerer) {
				m.EXPECT().
					AnswerQuestion(gomock.Any(), "کہانی کا سبق کیا ہے؟", "root/zakhmi-parinda").
					Return(rag.Answer{Success: true, Response: "مدد کرنا اچھی بات ہے۔", Source: rag.SourceKeyword})
			},
			wantAnswer: rag.Answer{Success: true, Response: "مدد کرنا اچھی بات ہے۔", Source: rag.SourceKeyword},
		},
		{
			name: "failed answer is not an error",
			req:  service.AskRequest{Question: "کیا ہوا؟"},
			mockSetup: func(m *mocks.MockAnswerer) {
				m.EXPECT().
					AnswerQuestion(gomock.Any(), "کیا ہوا؟", "").
					Return(rag.Answer{Success: false, Error: "No relevant context found", Reason: rag.ReasonNoContext})
			},
			wantAnswer: rag.Answer{Success: false, Error: "No relevant context found", Reason: rag.ReasonNoContext},
		},
		{
			name:      "empty question",
			req:       service.AskRequest{Question: "   ", StoryID: "root/kitaab"},
			mockSetup: func(m *mocks.MockAnswerer) {},
			wantErr:   true,
			checkErrType: func(err error) bool {
				var validationErr *service.ValidationError
				return errors.As(err, &validationErr) && validationErr.Field == "question"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			answerer := mocks.NewMockAnswerer(ctrl)
			tt.mockSetup(answerer)

			svc := service.NewAskService(answerer)
			got, err := svc.Ask(testContext(), tt.req)

			if tt.wantErr {
				if err == nil {
					t.Fatal("Ask() expected error, got nil")
				}
				if tt.checkErrType != nil && !tt.checkErrType(err) {
					t.Errorf("Ask() error type mismatch: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Ask() unexpected error: %v", err)
			}
			if got != tt.wantAnswer {
				t.Errorf("Ask() = %+v, want %+v", got, tt.wantAnswer)
			}
		})
	}
}
