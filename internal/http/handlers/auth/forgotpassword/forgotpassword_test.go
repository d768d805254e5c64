package forgotpassword

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	services "github.com/magabrotheeeer/techwatch-auth/internal/services/auth"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestForgotPasswordHandler(t *testing.T) {
	tests := []struct {
		name           string
		mockErr        error
		wantStatusCode int
		wantBody       string
	}{
		{
			name:           "sent or unknown",
			wantStatusCode: http.StatusOK,
			wantBody:       `{"status":"success","message":"You will receive a reset email if user with that email exist"}`,
		},
		{
			name:           "not verified",
			mockErr:        services.ErrForbidden,
			wantStatusCode: http.StatusForbidden,
			wantBody:       `{"status":"fail","message":"Account not verified"}`,
		},
		{
			name:           "email not sent",
			mockErr:        services.ErrEmailDelivery,
			wantStatusCode: http.StatusInternalServerError,
			wantBody:       `{"status":"error","message":"There was an error sending email"}`,
		},
		{
			name:           "store failure",
			mockErr:        assert.AnError,
			wantStatusCode: http.StatusInternalServerError,
			wantBody:       `{"status":"error","message":"Something went wrong"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("ForgotPassword", mock.Anything, "alice@example.com").Return(tt.mockErr).Once()

			body, _ := json.Marshal(Request{Email: "alice@example.com"})
			w := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/forgotpassword", bytes.NewReader(body)))

			assert.Equal(t, tt.wantStatusCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestForgotPasswordHandler_InvalidEmail(t *testing.T) {
	svc := new(ServiceMock)
	body, _ := json.Marshal(Request{Email: "nope"})
	w := httptest.NewRecorder()
	New(newNoopLogger(), svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/forgotpassword", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "field Email must be a valid email address")
	svc.AssertNotCalled(t, "ForgotPassword", mock.Anything, mock.Anything)
}
