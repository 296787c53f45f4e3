package transport

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/yndnr/ecoply-go/internal/session"
)

// fakeSession is an Invalidator over a MemoryStore.
type fakeSession struct {
	store   *session.MemoryStore
	expires atomic.Int32
	err     error
}

func newFakeSession(token string) *fakeSession {
	s := &fakeSession{store: session.NewMemoryStore()}
	if token != "" {
		s.store.Set(token)
	}
	return s
}

func (s *fakeSession) Expire() (bool, error) {
	s.expires.Add(1)
	if s.err != nil {
		return false, s.err
	}
	_, had, _ := s.store.Get()
	return had, s.store.Clear()
}

type fakeNavigator struct {
	mu        sync.Mutex
	redirects []string
}

func (n *fakeNavigator) Redirect(name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.redirects = append(n.redirects, name)
	return nil
}

func (n *fakeNavigator) calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.redirects...)
}

type brokenSource struct{}

var errDiskGone = errors.New("disk gone")

func (brokenSource) Get() (string, bool, error) { return "", false, errDiskGone }
