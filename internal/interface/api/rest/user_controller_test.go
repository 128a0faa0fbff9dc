package rest

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"files-manager-api/internal/application/services"
	domain "files-manager-api/internal/domain/user"
	"files-manager-api/internal/interface/api/rest/dto/user"
)

func setupUserRouter(us *FakeUserService) *gin.Engine {
	r := newTestEngine()
	NewUserController(r, us, newFakeAuth(), zap.NewNop())
	return r
}

func TestUserController_CreateUserHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		regErr     error
		wantStatus int
		wantErr    string
	}{
		{
			name:       "201 created",
			body:       user.Request{Email: "a@b.co", Password: "pw"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "400 invalid json",
			body:       "{bad",
			wantStatus: http.StatusBadRequest,
			wantErr:    "Invalid JSON",
		},
		{
			name:       "400 missing email",
			body:       user.Request{Password: "pw"},
			regErr:     &services.ValidationError{Field: "email", Kind: services.KindMissing},
			wantStatus: http.StatusBadRequest,
			wantErr:    "Missing email",
		},
		{
			name:       "400 already exists",
			body:       user.Request{Email: "a@b.co", Password: "pw"},
			regErr:     &services.ValidationError{Field: "email", Kind: services.KindAlreadyExists},
			wantStatus: http.StatusBadRequest,
			wantErr:    "Already exist",
		},
		{
			name:       "500 db down",
			body:       user.Request{Email: "a@b.co", Password: "pw"},
			regErr:     errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
			wantErr:    "internal error",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			us := &FakeUserService{
				RegisterFunc: func(_ context.Context, email, password string) (*domain.User, error) {
					if tt.regErr != nil {
						return nil, tt.regErr
					}
					return &domain.User{ID: 42, Email: email, PasswordHash: "secret-hash"}, nil
				},
			}
			rr := doReq(t, setupUserRouter(us), http.MethodPost, RouteUsers, tt.body, nil)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, errorOf(t, rr))
				return
			}
			assert.JSONEq(t, `{"id":42,"email":"a@b.co"}`, rr.Body.String())
		})
	}
}

func TestUserController_GetMeHandler(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		findErr    error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "200 current user",
			headers:    authHeader(),
			wantStatus: http.StatusOK,
			wantBody:   `{"id":1,"email":"bob@example.com"}`,
		},
		{
			name:       "401 without token",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Unauthorized"}`,
		},
		{
			name:       "401 user vanished",
			headers:    authHeader(),
			findErr:    services.ErrNotFound,
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Unauthorized"}`,
		},
		{
			name:       "500 db down",
			headers:    authHeader(),
			findErr:    errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			us := &FakeUserService{
				FindUserByIDFunc: func(_ context.Context, id domain.ID) (*domain.User, error) {
					if tt.findErr != nil {
						return nil, tt.findErr
					}
					return &domain.User{ID: id, Email: "bob@example.com"}, nil
				},
			}

			rr := doReq(t, setupUserRouter(us), http.MethodGet, RouteMe, nil, tt.headers)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
		})
	}
}
