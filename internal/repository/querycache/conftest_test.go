package querycache

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esodm/internal/db"
)

// mockStore is an in-memory store with optional error injection.
type mockStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	ttls     map[string]time.Duration
	getErr   error
	setErr   error
	incrErr  error
	setCalls int
}

func newMockStore() *mockStore {
	return &mockStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) IncrBy(_ context.Context, key string, val int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incrErr != nil {
		return 0, m.incrErr
	}
	n, _ := strconv.ParseInt(string(m.data[key]), 10, 64)
	n += val
	m.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func (m *mockStore) Expire(_ context.Context, key string, ttl time.Duration, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ttls[key] = ttl
	return nil
}

// mockSearcher counts engine calls.
type mockSearcher struct {
	mu    sync.Mutex
	calls int
	resp  []byte
	err   error
	delay time.Duration

	// started is closed on the first call; release unblocks calls when set.
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (m *mockSearcher) Search(ctx context.Context, _ string, _ []byte) ([]byte, error) {
	if m.started != nil {
		m.once.Do(func() { close(m.started) })
	}
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.resp, m.err
}

func newTestCache(t *testing.T, inner *mockSearcher) (*Cache, *mockStore, *prometheus.CounterVec) {
	t.Helper()
	ms := newMockStore()
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_search_cache_total",
		Help: "test",
	}, []string{"result"})
	return New(inner, ms, time.Minute, counter, zap.NewNop()), ms, counter
}
