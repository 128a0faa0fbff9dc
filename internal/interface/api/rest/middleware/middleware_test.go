package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"files-manager-api/internal/application/services"
	"files-manager-api/internal/domain/user"
)

type fakeAuth struct {
	tokens map[string]user.ID
	err    error
}

func (f *fakeAuth) Login(context.Context, string, string) (string, error) { return "", nil }

func (f *fakeAuth) Logout(context.Context, string) error { return nil }

func (f *fakeAuth) Resolve(_ context.Context, token string) (user.ID, error) {
	if f.err != nil {
		return user.Anonymous, f.err
	}
	id, ok := f.tokens[token]
	if !ok {
		return user.Anonymous, services.ErrUnauthorized
	}
	return id, nil
}

func sessionRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": int64(RequesterID(c))})
	})
	return r
}

func TestSessionMiddleware_Table(t *testing.T) {
	auth := &fakeAuth{tokens: map[string]user.ID{"good": 5}}

	tests := []struct {
		name       string
		required   bool
		token      string
		backendErr error
		wantStatus int
		wantBody   string
	}{
		{"required ok", true, "good", nil, http.StatusOK, `{"id":5}`},
		{"required missing", true, "", nil, http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"required unknown", true, "bad", nil, http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"required backend down", true, "good", errors.New("redis"), http.StatusInternalServerError, `{"error":"internal error"}`},
		{"optional ok", false, "good", nil, http.StatusOK, `{"id":5}`},
		{"optional missing", false, "", nil, http.StatusOK, `{"id":0}`},
		{"optional unknown", false, "bad", nil, http.StatusOK, `{"id":0}`},
		{"optional backend down", false, "good", errors.New("redis"), http.StatusInternalServerError, `{"error":"internal error"}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			auth.err = tt.backendErr
			mw := OptionalSession(auth, zap.NewNop())
			if tt.required {
				mw = RequireSession(auth, zap.NewNop())
			}

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.token != "" {
				req.Header.Set(HeaderToken, tt.token)
			}
			rr := httptest.NewRecorder()
			sessionRouter(mw).ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
		})
	}
}

func TestRequestLogGin_KeepsBodyAndRedacts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "c"}, []string{"result"})

	payload := `{"name":"a.txt","password":"hunter2","data":"` + strings.Repeat("A", 2*maxLogBodySize) + `"}`

	var seen string
	r := gin.New()
	r.Use(RequestLogGin(zap.New(core), counter))
	r.POST("/files", func(c *gin.Context) {
		b, err := io.ReadAll(c.Request.Body)
		require.NoError(t, err)
		seen = string(b)
		c.Status(http.StatusCreated)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/files", strings.NewReader(payload)))

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, payload, seen)
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("app_requests_total")))

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)
	body := entries[0].ContextMap()["body"].(string)
	assert.NotContains(t, body, "hunter2")
	assert.NotContains(t, body, "AAAA")
	assert.Contains(t, body, `"name":"a.txt"`)
}
