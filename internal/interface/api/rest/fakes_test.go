package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"files-manager-api/internal/application/ports"
	"files-manager-api/internal/application/services"
	domainFile "files-manager-api/internal/domain/file"
	domainUser "files-manager-api/internal/domain/user"
)

const testToken = "tok-1"

type FakeAuthService struct {
	LoginFunc  func(ctx context.Context, email, password string) (string, error)
	LogoutFunc func(ctx context.Context, token string) error
	// sessions backs Resolve so every test can authenticate with testToken
	sessions map[string]domainUser.ID
}

func newFakeAuth() *FakeAuthService {
	return &FakeAuthService{sessions: map[string]domainUser.ID{testToken: 1}}
}

func (f *FakeAuthService) Login(ctx context.Context, email, password string) (string, error) {
	if f.LoginFunc == nil {
		return "", errors.New("not used")
	}
	return f.LoginFunc(ctx, email, password)
}
func (f *FakeAuthService) Logout(ctx context.Context, token string) error {
	if f.LogoutFunc == nil {
		return errors.New("not used")
	}
	return f.LogoutFunc(ctx, token)
}
func (f *FakeAuthService) Resolve(_ context.Context, token string) (domainUser.ID, error) {
	id, ok := f.sessions[token]
	if !ok {
		return domainUser.Anonymous, services.ErrUnauthorized
	}
	return id, nil
}

type FakeUserService struct {
	RegisterFunc     func(ctx context.Context, email, password string) (*domainUser.User, error)
	FindUserByIDFunc func(ctx context.Context, id domainUser.ID) (*domainUser.User, error)
}

func (f *FakeUserService) Register(ctx context.Context, email, password string) (*domainUser.User, error) {
	if f.RegisterFunc == nil {
		return nil, errors.New("not used")
	}
	return f.RegisterFunc(ctx, email, password)
}
func (f *FakeUserService) FindUserByID(ctx context.Context, id domainUser.ID) (*domainUser.User, error) {
	if f.FindUserByIDFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FindUserByIDFunc(ctx, id)
}

type FakeFileService struct {
	CreateNodeFunc  func(ctx context.Context, requester domainUser.ID, in domainFile.NewNode) (*domainFile.Node, error)
	GetNodeFunc     func(ctx context.Context, requester domainUser.ID, id domainFile.ID) (*domainFile.Node, error)
	ListNodesFunc   func(ctx context.Context, requester domainUser.ID, parentID domainFile.ID, page int) (domainFile.Nodes, error)
	SetPublicFunc   func(ctx context.Context, requester domainUser.ID, id domainFile.ID, isPublic bool) (*domainFile.Node, error)
	OpenContentFunc func(ctx context.Context, requester domainUser.ID, id domainFile.ID, width int) (*domainFile.Content, error)
}

func (f *FakeFileService) CreateNode(ctx context.Context, requester domainUser.ID, in domainFile.NewNode) (*domainFile.Node, error) {
	if f.CreateNodeFunc == nil {
		return nil, errors.New("not used")
	}
	return f.CreateNodeFunc(ctx, requester, in)
}
func (f *FakeFileService) GetNode(ctx context.Context, requester domainUser.ID, id domainFile.ID) (*domainFile.Node, error) {
	if f.GetNodeFunc == nil {
		return nil, errors.New("not used")
	}
	return f.GetNodeFunc(ctx, requester, id)
}
func (f *FakeFileService) ListNodes(ctx context.Context, requester domainUser.ID, parentID domainFile.ID, page int) (domainFile.Nodes, error) {
	if f.ListNodesFunc == nil {
		return nil, errors.New("not used")
	}
	return f.ListNodesFunc(ctx, requester, parentID, page)
}
func (f *FakeFileService) SetPublic(ctx context.Context, requester domainUser.ID, id domainFile.ID, isPublic bool) (*domainFile.Node, error) {
	if f.SetPublicFunc == nil {
		return nil, errors.New("not used")
	}
	return f.SetPublicFunc(ctx, requester, id, isPublic)
}
func (f *FakeFileService) OpenContent(ctx context.Context, requester domainUser.ID, id domainFile.ID, width int) (*domainFile.Content, error) {
	if f.OpenContentFunc == nil {
		return nil, errors.New("not used")
	}
	return f.OpenContentFunc(ctx, requester, id, width)
}

type FakeStatusService struct {
	HealthFunc func(ctx context.Context) ports.Health
	StatsFunc  func(ctx context.Context) (ports.Stats, error)
}

func (f *FakeStatusService) Health(ctx context.Context) ports.Health { return f.HealthFunc(ctx) }
func (f *FakeStatusService) Stats(ctx context.Context) (ports.Stats, error) {
	return f.StatsFunc(ctx)
}

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doReq(t *testing.T, r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf *bytes.Reader
	switch v := body.(type) {
	case nil:
		buf = bytes.NewReader(nil)
	case string:
		buf = bytes.NewReader([]byte(v))
	default:
		b, err := json.Marshal(v)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func authHeader() map[string]string { return map[string]string{"X-Token": testToken} }

func errorOf(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	msg, _ := resp["error"].(string)
	return msg
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}
