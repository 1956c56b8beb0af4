package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/motorent/backend/internal/domain"
	"github.com/motorent/backend/internal/service/auth"
	"github.com/motorent/backend/internal/store"
)

func newTestUser() *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:        uuid.New(),
		Name:      "Alice Example",
		Email:     "alice@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestRegister(t *testing.T) {
	user := newTestUser()

	tests := []struct {
		name           string
		payload        interface{}
		serviceResult  *domain.User
		serviceError   error
		expectedStatus int
	}{
		{
			name: "Success",
			payload: RegisterRequest{
				Name:     "Alice Example",
				Email:    "alice@example.com",
				Password: "password123",
			},
			serviceResult:  user,
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Duplicate Email",
			payload: RegisterRequest{
				Name:     "Alice Example",
				Email:    "alice@example.com",
				Password: "password123",
			},
			serviceError:   store.ErrEmailExists,
			expectedStatus: http.StatusConflict,
		},
		{
			name: "Password Too Short",
			payload: RegisterRequest{
				Name:     "Alice Example",
				Email:    "alice@example.com",
				Password: "short",
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "Invalid Email",
			payload: RegisterRequest{
				Name:     "Alice Example",
				Email:    "not-an-email",
				Password: "password123",
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			userService := &mockUserService{
				registerFn: func(ctx context.Context, name, email, password string) (*domain.User, error) {
					return tc.serviceResult, tc.serviceError
				},
			}
			handler := NewAuthHandler(userService, &mockJWTService{}, nil)

			rr := postJSON(t, handler.Register, "/api/auth/register", tc.payload)

			if rr.Code != tc.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tc.expectedStatus)
			}

			if tc.expectedStatus == http.StatusCreated {
				var response AuthResponse
				if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
					t.Fatalf("failed to decode response body: %v", err)
				}
				if response.User == nil || response.User.ID != user.ID {
					t.Errorf("wrong user in response: %+v", response.User)
				}
				if response.AccessToken != "access-token" {
					t.Errorf("wrong access token: got %q", response.AccessToken)
				}
				if response.RefreshToken != "refresh-token" {
					t.Errorf("wrong refresh token: got %q", response.RefreshToken)
				}
			}
		})
	}
}

func TestLogin(t *testing.T) {
	user := newTestUser()

	tests := []struct {
		name           string
		payload        interface{}
		serviceResult  *domain.User
		serviceError   error
		expectedStatus int
	}{
		{
			name: "Success",
			payload: LoginRequest{
				Email:    "alice@example.com",
				Password: "password123",
			},
			serviceResult:  user,
			expectedStatus: http.StatusOK,
		},
		{
			name: "Wrong Password",
			payload: LoginRequest{
				Email:    "alice@example.com",
				Password: "wrong-password",
			},
			serviceError:   auth.ErrInvalidCredentials,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Unknown Email",
			payload: LoginRequest{
				Email:    "nobody@example.com",
				Password: "password123",
			},
			serviceError:   auth.ErrInvalidCredentials,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Missing Password",
			payload:        LoginRequest{Email: "alice@example.com"},
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			userService := &mockUserService{
				authenticateFn: func(ctx context.Context, email, password string) (*domain.User, error) {
					return tc.serviceResult, tc.serviceError
				},
			}
			handler := NewAuthHandler(userService, &mockJWTService{}, nil)

			rr := postJSON(t, handler.Login, "/api/auth/login", tc.payload)

			if rr.Code != tc.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tc.expectedStatus)
			}

			if tc.expectedStatus == http.StatusUnauthorized {
				var response errorResponseBody
				if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
					t.Fatalf("failed to decode error body: %v", err)
				}
				if response.Error != "Invalid credentials" {
					t.Errorf("credential failures must not reveal which field was wrong: got %q", response.Error)
				}
			}
		})
	}
}

// errorResponseBody mirrors the wire shape of shared.ErrorResponse.
type errorResponseBody struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

func TestRefreshToken(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name           string
		payload        interface{}
		claims         *auth.Claims
		validateError  error
		expectedStatus int
	}{
		{
			name:           "Success",
			payload:        RefreshTokenRequest{RefreshToken: "valid-refresh"},
			claims:         &auth.Claims{UserID: userID, TokenType: "refresh"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Expired",
			payload:        RefreshTokenRequest{RefreshToken: "expired-refresh"},
			validateError:  auth.ErrExpiredRefreshToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Access Token Presented",
			payload:        RefreshTokenRequest{RefreshToken: "an-access-token"},
			validateError:  auth.ErrWrongTokenType,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Missing Token",
			payload:        RefreshTokenRequest{},
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			jwtService := &mockJWTService{
				validateRefreshTokenFn: func(ctx context.Context, tokenString string) (*auth.Claims, error) {
					return tc.claims, tc.validateError
				},
			}
			handler := NewAuthHandler(&mockUserService{}, jwtService, nil)

			rr := postJSON(t, handler.RefreshToken, "/api/auth/refresh", tc.payload)

			if rr.Code != tc.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tc.expectedStatus)
			}

			if tc.expectedStatus == http.StatusOK {
				var response RefreshTokenResponse
				if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
					t.Fatalf("failed to decode response body: %v", err)
				}
				if response.AccessToken != "access-token" || response.RefreshToken != "refresh-token" {
					t.Errorf("tokens were not rotated: %+v", response)
				}
			}
		})
	}
}
