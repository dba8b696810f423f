// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/cfx/internal/models"
)

// MockFeedService is a test double for services.FeedService.
//
// Pages are keyed by page index; a missing page returns an empty slice.
type MockFeedService struct {
	Account  *models.Account
	Pages    map[int][]models.Post
	UserErr  error
	PageErrs map[int]error

	mu        sync.Mutex
	UserCalls []string
	PageCalls []int
}

func (m *MockFeedService) GetUser(ctx context.Context, userCode string) (*models.Account, error) {
	m.mu.Lock()
	m.UserCalls = append(m.UserCalls, userCode)
	m.mu.Unlock()

	if m.UserErr != nil {
		return nil, m.UserErr
	}
	if m.Account == nil {
		return nil, fmt.Errorf("no account configured")
	}
	account := *m.Account
	return &account, nil
}

func (m *MockFeedService) GetTimeline(ctx context.Context, userID, page int) ([]models.Post, error) {
	m.mu.Lock()
	m.PageCalls = append(m.PageCalls, page)
	m.mu.Unlock()

	if err, ok := m.PageErrs[page]; ok {
		return nil, err
	}
	if posts, ok := m.Pages[page]; ok {
		return posts, nil
	}
	return []models.Post{}, nil
}

// MockMediaFetcher serves asset bodies from a map and counts calls per reference.
type MockMediaFetcher struct {
	Bodies map[string][]byte
	Errs   map[string]error

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockMediaFetcher) Fetch(ctx context.Context, reference string) ([]byte, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[reference]++
	m.mu.Unlock()

	if err, ok := m.Errs[reference]; ok {
		return nil, err
	}
	if body, ok := m.Bodies[reference]; ok {
		return body, nil
	}
	return nil, fmt.Errorf("no body for %s", reference)
}

// Calls returns how many times reference was fetched.
func (m *MockMediaFetcher) Calls(reference string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[reference]
}

// TotalCalls returns the number of fetches across all references.
func (m *MockMediaFetcher) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
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

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
