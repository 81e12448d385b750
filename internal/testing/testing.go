// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/store"
)

// MemoryStore is an in-process [store.Store] for tests.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	sets   map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}, sets: map[string]int{}}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.sets[key]++
	return nil
}

func (m *MemoryStore) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(m.values[key], 10, 64)
	n++
	m.values[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }
func (m *MemoryStore) Close() error                   { return nil }

// Sets returns how many times key has been written.
func (m *MemoryStore) Sets(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets[key]
}

// Value returns the raw value of key, empty when unset.
func (m *MemoryStore) Value(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

// FailingStore is a [store.Store] whose every operation fails with Err.
type FailingStore struct {
	Err error
}

func (f *FailingStore) Get(ctx context.Context, key string) (string, error) { return "", f.Err }
func (f *FailingStore) Set(ctx context.Context, key, value string) error    { return f.Err }
func (f *FailingStore) Incr(ctx context.Context, key string) (int64, error) { return 0, f.Err }
func (f *FailingStore) Ping(ctx context.Context) error                      { return f.Err }
func (f *FailingStore) Close() error                                        { return nil }

// MockService is a test double for [services.NowPlayingService]
type MockService struct {
	URL      string
	Snapshot *models.PlaybackSnapshot
	Err      error
	Codes    []string
	Supplied []string
	Count    int64
	mu       sync.Mutex
}

func (m *MockService) Authorize(supplied string) (string, error) {
	m.mu.Lock()
	m.Supplied = append(m.Supplied, supplied)
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.URL, nil
}

func (m *MockService) ExchangeCode(ctx context.Context, code string) error {
	m.mu.Lock()
	m.Codes = append(m.Codes, code)
	m.mu.Unlock()
	return m.Err
}

func (m *MockService) NowPlaying(ctx context.Context) (*models.PlaybackSnapshot, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Snapshot, nil
}

func (m *MockService) CountRequest(ctx context.Context) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Count++
	return m.Count, nil
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}
