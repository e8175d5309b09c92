package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whentomeet/internal/delivery/http/helpers"
	"whentomeet/internal/delivery/http/middleware"
	"whentomeet/internal/domain"
)

// fakeUserService implements domain.UserService for handler tests.
type fakeUserService struct {
	signUpUser  *domain.User
	signUpErr   error
	authUser    *domain.User
	authErr     error
	resetOK     bool
	resetErr    error
	exists      bool
	existsErr   error
	messages    []domain.Message
	messagesErr error
}

func (f *fakeUserService) UsernameExists(_ context.Context, _ string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeUserService) EmailExists(_ context.Context, _ string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeUserService) SignUp(_ context.Context, _, _, _ string) (*domain.User, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return f.signUpUser, nil
}

func (f *fakeUserService) Authenticate(_ context.Context, _, _ string) (*domain.User, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.authUser, nil
}

func (f *fakeUserService) ResetPassword(_ context.Context, _, _ string) (bool, error) {
	return f.resetOK, f.resetErr
}

func (f *fakeUserService) GetMessages(_ context.Context, _ string) ([]domain.Message, error) {
	return f.messages, f.messagesErr
}

func (f *fakeUserService) ClearMessages(_ context.Context, _ string) error { return f.messagesErr }

func (f *fakeUserService) UpdateDeparture(_ context.Context, _ string, _ domain.GeoPoint) error {
	return nil
}

func (f *fakeUserService) OwnedWTMs(_ context.Context, _ string) ([]domain.EventRef, error) {
	return nil, nil
}

func (f *fakeUserService) GuestWTMs(_ context.Context, _ string) (*domain.GuestWTMs, error) {
	return nil, nil
}

// fakeIssuer implements domain.TokenIssuer.
type fakeIssuer struct {
	token string
	err   error
}

func (f *fakeIssuer) Issue(_ string, _ time.Duration) (string, error) {
	return f.token, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestAuthController_SignUp(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		svc          *fakeUserService
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:       "success",
			body:       `{"email":"alice@example.com","username":"alice","password":"correcthorse"}`,
			svc:        &fakeUserService{signUpUser: &domain.User{ID: "u-1", Email: "alice@example.com", Username: "alice"}},
			wantStatus: http.StatusCreated,
		},
		{
			name:         "invalid json",
			body:         `{invalid`,
			svc:          &fakeUserService{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "short password",
			body:         `{"email":"alice@example.com","username":"alice","password":"short"}`,
			svc:          &fakeUserService{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "malformed email",
			body:         `{"email":"not-an-email","username":"alice","password":"correcthorse"}`,
			svc:          &fakeUserService{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "duplicate email",
			body:         `{"email":"taken@example.com","username":"alice","password":"correcthorse"}`,
			svc:          &fakeUserService{signUpErr: domain.ErrDuplicateEmail},
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeConflict,
		},
		{
			name:         "duplicate username",
			body:         `{"email":"alice@example.com","username":"taken","password":"correcthorse"}`,
			svc:          &fakeUserService{signUpErr: domain.ErrDuplicateUsername},
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeConflict,
		},
		{
			name:         "storage error",
			body:         `{"email":"alice@example.com","username":"alice","password":"correcthorse"}`,
			svc:          &fakeUserService{signUpErr: assert.AnError},
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(discardLogger(), tt.svc, &fakeIssuer{token: "tok"}, time.Hour)
			req := httptest.NewRequest(http.MethodPost, "http://test/auth/signup", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			ctrl.SignUp(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}

func TestAuthController_Login(t *testing.T) {
	user := &domain.User{ID: "u-1", Email: "alice@example.com", Username: "alice"}

	tests := []struct {
		name         string
		body         string
		svc          *fakeUserService
		issuer       *fakeIssuer
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:       "success",
			body:       `{"email":"alice@example.com","password":"correcthorse"}`,
			svc:        &fakeUserService{authUser: user},
			issuer:     &fakeIssuer{token: "bearer-token-xyz"},
			wantStatus: http.StatusOK,
		},
		{
			name:         "wrong password",
			body:         `{"email":"alice@example.com","password":"wrong"}`,
			svc:          &fakeUserService{authErr: domain.ErrInvalidCredentials},
			issuer:       &fakeIssuer{},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "unknown email",
			body:         `{"email":"ghost@example.com","password":"correcthorse"}`,
			svc:          &fakeUserService{authErr: domain.ErrUserNotFound},
			issuer:       &fakeIssuer{},
			wantStatus:   http.StatusNotFound,
			wantBodyCode: helpers.ErrCodeNotFound,
		},
		{
			name:         "missing password",
			body:         `{"email":"alice@example.com"}`,
			svc:          &fakeUserService{},
			issuer:       &fakeIssuer{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "issuer failure",
			body:         `{"email":"alice@example.com","password":"correcthorse"}`,
			svc:          &fakeUserService{authUser: user},
			issuer:       &fakeIssuer{err: errors.New("signing failed")},
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(discardLogger(), tt.svc, tt.issuer, time.Hour)
			req := httptest.NewRequest(http.MethodPost, "http://test/auth/login", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			ctrl.Login(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var resp LoginResponse
				require.NoError(t, json.Unmarshal(dataBytes, &resp))
				assert.Equal(t, "bearer-token-xyz", resp.Token)
				assert.Equal(t, "Bearer", resp.TokenType)
				require.NotNil(t, resp.User)
				assert.Equal(t, "alice", resp.User.Username)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}

func TestAuthController_ResetPassword(t *testing.T) {
	tests := []struct {
		name          string
		contextUserID string
		body          string
		svc           *fakeUserService
		wantStatus    int
	}{
		{
			name:          "success",
			contextUserID: "u-1",
			body:          `{"new_password":"freshhorse42"}`,
			svc:           &fakeUserService{resetOK: true},
			wantStatus:    http.StatusOK,
		},
		{
			name:       "no user in context",
			body:       `{"new_password":"freshhorse42"}`,
			svc:        &fakeUserService{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:          "short password",
			contextUserID: "u-1",
			body:          `{"new_password":"short"}`,
			svc:           &fakeUserService{},
			wantStatus:    http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(discardLogger(), tt.svc, &fakeIssuer{}, time.Hour)
			req := httptest.NewRequest(http.MethodPost, "http://test/auth/reset-password", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.contextUserID != "" {
				req = req.WithContext(middleware.SetUserID(req.Context(), tt.contextUserID))
			}
			rr := httptest.NewRecorder()

			ctrl.ResetPassword(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestAuthController_ExistenceChecks(t *testing.T) {
	t.Run("username exists", func(t *testing.T) {
		ctrl := NewAuthController(discardLogger(), &fakeUserService{exists: true}, &fakeIssuer{}, time.Hour)
		req := httptest.NewRequest(http.MethodGet, "http://test/auth/username-exists?username=alice", nil)
		rr := httptest.NewRecorder()

		ctrl.UsernameExists(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var envelope helpers.APIResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		dataBytes, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		var resp ExistsResponse
		require.NoError(t, json.Unmarshal(dataBytes, &resp))
		assert.True(t, resp.Exists)
	})

	t.Run("missing username param", func(t *testing.T) {
		ctrl := NewAuthController(discardLogger(), &fakeUserService{}, &fakeIssuer{}, time.Hour)
		req := httptest.NewRequest(http.MethodGet, "http://test/auth/username-exists", nil)
		rr := httptest.NewRecorder()

		ctrl.UsernameExists(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("email does not exist", func(t *testing.T) {
		ctrl := NewAuthController(discardLogger(), &fakeUserService{exists: false}, &fakeIssuer{}, time.Hour)
		req := httptest.NewRequest(http.MethodGet, "http://test/auth/email-exists?email=ghost@example.com", nil)
		rr := httptest.NewRecorder()

		ctrl.EmailExists(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var envelope helpers.APIResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		dataBytes, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		var resp ExistsResponse
		require.NoError(t, json.Unmarshal(dataBytes, &resp))
		assert.False(t, resp.Exists)
	})
}
