package cli

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alnah/go-flashgen/internal/card"
	"github.com/alnah/go-flashgen/internal/config"
	"github.com/alnah/go-flashgen/internal/generate"
	"github.com/alnah/go-flashgen/internal/store"
)

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)

	mu        sync.Mutex
	loadCalls int
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{SessionDir: "/sessions"}, nil
}

func (m *mockConfigLoader) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

// ---------------------------------------------------------------------------
// Mock ProviderFactory + Provider
// ---------------------------------------------------------------------------

type mockProvider struct {
	CompleteFunc func(ctx context.Context, cred generate.Credential, req generate.Request) (generate.Reply, error)
	ProbeFunc    func(ctx context.Context, cred generate.Credential) error

	mu         sync.Mutex
	requests   []generate.Request
	creds      []generate.Credential
	probeCalls int
}

func (m *mockProvider) Complete(ctx context.Context, cred generate.Credential, req generate.Request) (generate.Reply, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.creds = append(m.creds, cred)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, cred, req)
	}
	return generate.Reply{Content: `{"cards": [{"type": "basic", "front": "Q", "back": "A"}]}`}, nil
}

func (m *mockProvider) Probe(ctx context.Context, cred generate.Credential) error {
	m.mu.Lock()
	m.probeCalls++
	m.creds = append(m.creds, cred)
	m.mu.Unlock()

	if m.ProbeFunc != nil {
		return m.ProbeFunc(ctx, cred)
	}
	return nil
}

func (m *mockProvider) Requests() []generate.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generate.Request(nil), m.requests...)
}

func (m *mockProvider) Creds() []generate.Credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generate.Credential(nil), m.creds...)
}

func (m *mockProvider) ProbeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.probeCalls
}

type mockProviderFactory struct {
	provider *mockProvider

	mu      sync.Mutex
	model   string
	baseURL string
}

func (m *mockProviderFactory) NewProvider(model, baseURL string, _ *slog.Logger) generate.Provider {
	m.mu.Lock()
	m.model = model
	m.baseURL = baseURL
	m.mu.Unlock()
	return m.provider
}

func (m *mockProviderFactory) Model() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model
}

func (m *mockProviderFactory) BaseURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.baseURL
}

// ---------------------------------------------------------------------------
// Mock StoreFactory + in-memory SessionStore
// ---------------------------------------------------------------------------

// memStore keeps the encoded session record, so tests exercise the same
// codec as the file store.
type memStore struct {
	SaveErr error

	mu        sync.Mutex
	data      []byte
	saveCalls int
}

func (m *memStore) Save(s *card.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	data, err := card.MarshalSession(s)
	if err != nil {
		return err
	}
	m.data = data
	return nil
}

func (m *memStore) Load() (*card.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, store.ErrNoSession
	}
	return card.UnmarshalSession(m.data)
}

func (m *memStore) LoadLatest(now time.Time, maxAge time.Duration) (*card.Session, bool, error) {
	s, err := m.Load()
	if err != nil {
		return nil, false, err
	}
	return s, s.IsExpired(now, maxAge), nil
}

func (m *memStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}

func (m *memStore) Path() string {
	return "/sessions/" + store.FileName
}

func (m *memStore) SaveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCalls
}

type mockStoreFactory struct {
	store *memStore

	mu  sync.Mutex
	dir string
}

func (m *mockStoreFactory) NewStore(dir string) SessionStore {
	m.mu.Lock()
	m.dir = dir
	m.mu.Unlock()
	return m.store
}

func (m *mockStoreFactory) Dir() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dir
}

// Compile-time interface verification.
var (
	_ ConfigLoader      = (*mockConfigLoader)(nil)
	_ generate.Provider = (*mockProvider)(nil)
	_ ProviderFactory   = (*mockProviderFactory)(nil)
	_ SessionStore      = (*memStore)(nil)
	_ StoreFactory      = (*mockStoreFactory)(nil)
)
