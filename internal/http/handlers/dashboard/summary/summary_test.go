package summary

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/freefromtrial/backend/internal/aggregate"
	"github.com/freefromtrial/backend/internal/http/middlewarectx"
	"github.com/freefromtrial/backend/internal/models"
	"github.com/freefromtrial/backend/internal/services/dashboard"
)

// MockService реализует интерфейс summary.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Summary(ctx context.Context, userUID string, now time.Time) (dashboard.Summary, error) {
	args := m.Called(ctx, userUID, now)
	return args.Get(0).(dashboard.Summary), args.Error(1)
}

func TestSummaryHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	okSummary := dashboard.Summary{
		Counts:       aggregate.Counts{Active: 2, Urgent: 1, Cancelled: 1},
		TotalSavings: "9.99",
		UrgentList:   []models.TrialView{{ID: "1", Name: "Netflix"}},
		UpcomingList: []models.TrialView{{ID: "1", Name: "Netflix"}},
		Available:    true,
	}

	tests := []struct {
		name           string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		checkBody      func(t *testing.T, body string)
	}{
		{
			name:    "успешная сводка",
			userUID: "user123",
			setupMock: func(m *MockService) {
				m.On("Summary", mock.Anything, "user123", mock.AnythingOfType("time.Time")).
					Return(okSummary, nil)
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"totalSavings":"9.99"`)
				assert.Contains(t, body, `"active":2`)
			},
		},
		{
			name:           "отсутствует авторизация",
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, "unauthorized")
			},
		},
		{
			name:    "последний успешный снимок при ошибке загрузки",
			userUID: "user123",
			setupMock: func(m *MockService) {
				m.On("Summary", mock.Anything, "user123", mock.AnythingOfType("time.Time")).
					Return(okSummary, errors.New("db down"))
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"totalSavings":"9.99"`)
			},
		},
		{
			name:    "ошибка загрузки без снимка",
			userUID: "user123",
			setupMock: func(m *MockService) {
				m.On("Summary", mock.Anything, "user123", mock.AnythingOfType("time.Time")).
					Return(dashboard.Summary{}, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, "failed to load trials")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil)
			ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.checkBody(t, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
