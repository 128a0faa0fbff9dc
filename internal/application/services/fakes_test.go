package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	domain "files-manager-api/internal/domain/file"
	"files-manager-api/internal/domain/user"
	"files-manager-api/internal/infrastructure/blob"
)

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_counters"}, []string{"result"})
}

type memFiles struct {
	mu     sync.Mutex
	nodes  map[domain.ID]*domain.Node
	nextID domain.ID
	err    error
}

func newMemFiles() *memFiles {
	return &memFiles{nodes: map[domain.ID]*domain.Node{}}
}

func (m *memFiles) put(n domain.Node) *domain.Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == 0 {
		m.nextID++
		n.ID = m.nextID
	} else if n.ID > m.nextID {
		m.nextID = n.ID
	}
	m.nodes[n.ID] = &n
	cp := n
	return &cp
}

func (m *memFiles) get(id domain.ID) *domain.Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok {
		return nil
	}
	cp := *n
	return &cp
}

func (m *memFiles) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.nodes)
}

func (m *memFiles) CreateNode(_ context.Context, req *domain.Node) (*domain.Node, error) {
	if m.err != nil {
		return nil, m.err
	}
	n := *req
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	return m.put(n), nil
}

func (m *memFiles) FetchNode(_ context.Context, id domain.ID) (*domain.Node, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.get(id), nil
}

func (m *memFiles) FetchOwnedNode(_ context.Context, id domain.ID, userID user.ID) (*domain.Node, error) {
	if m.err != nil {
		return nil, m.err
	}
	n := m.get(id)
	if n == nil || n.UserID != userID {
		return nil, nil
	}
	return n, nil
}

func (m *memFiles) FetchNodes(_ context.Context, userID user.ID, parentID domain.ID, page int) (domain.Nodes, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	var all domain.Nodes
	for _, n := range m.nodes {
		if n.UserID == userID && n.ParentID == parentID {
			cp := *n
			all = append(all, &cp)
		}
	}
	m.mu.Unlock()
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	from := page * domain.PageSize
	if from >= len(all) {
		return domain.Nodes{}, nil
	}
	to := from + domain.PageSize
	if to > len(all) {
		to = len(all)
	}
	return all[from:to], nil
}

func (m *memFiles) FetchStaleNodes(_ context.Context, status domain.Status, before time.Time, limit int) (domain.Nodes, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	var out domain.Nodes
	for _, n := range m.nodes {
		if n.Type.HasContent() && n.Status == status && n.UpdatedAt.Before(before) {
			cp := *n
			out = append(out, &cp)
		}
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memFiles) UpdatePublic(_ context.Context, id domain.ID, userID user.ID, isPublic bool) (*domain.Node, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok || n.UserID != userID {
		return nil, nil
	}
	n.IsPublic = isPublic
	cp := *n
	return &cp, nil
}

func (m *memFiles) TransitionStatus(_ context.Context, id domain.ID, to domain.Status, from ...domain.Status) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if n.Status == s {
			n.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (m *memFiles) CountNodes(context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return int64(m.count()), nil
}

type memBlobs struct {
	mu     sync.Mutex
	data   map[string][]byte
	putErr error
	getErr error
}

func newMemBlobs() *memBlobs { return &memBlobs{data: map[string][]byte{}} }

func (b *memBlobs) Put(_ context.Context, key string, r io.Reader) error {
	if b.putErr != nil {
		return b.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = data
	return nil
}

func (b *memBlobs) Open(_ context.Context, key string) (io.ReadCloser, int64, error) {
	if b.getErr != nil {
		return nil, 0, b.getErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.data[key]
	if !ok {
		return nil, 0, blob.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (b *memBlobs) keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.data))
	for k := range b.data {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type fakeQueue struct {
	mu    sync.Mutex
	jobs  []domain.Job
	fails int
	calls int
}

func (q *fakeQueue) Enqueue(_ context.Context, job domain.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls++
	if q.fails < 0 || q.calls <= q.fails {
		return errors.New("broker unavailable")
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type memUsers struct {
	mu        sync.Mutex
	users     map[string]*user.User
	nextID    user.ID
	err       error
	createErr error
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]*user.User{}} }

func (m *memUsers) FetchUserByID(_ context.Context, id user.ID) (*user.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FetchUserByEmail(_ context.Context, email string) (*user.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) CreateUser(_ context.Context, email, passwordHash string) (*user.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u := &user.User{ID: m.nextID, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	m.users[email] = u
	cp := *u
	return &cp, nil
}

func (m *memUsers) CountUsers(context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

type fakeSessions struct {
	mu      sync.Mutex
	tokens  map[string]user.ID
	err     error
	pingErr error
	next    int
}

func newFakeSessions() *fakeSessions { return &fakeSessions{tokens: map[string]user.ID{}} }

func (s *fakeSessions) Issue(_ context.Context, id user.ID) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	tok := "tok-" + string(rune('a'+s.next))
	s.tokens[tok] = id
	return tok, nil
}

func (s *fakeSessions) Resolve(_ context.Context, token string) (user.ID, bool, error) {
	if s.err != nil {
		return user.Anonymous, false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tokens[token]
	return id, ok, nil
}

func (s *fakeSessions) Revoke(_ context.Context, token string) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

func (s *fakeSessions) Ping(context.Context) error { return s.pingErr }
