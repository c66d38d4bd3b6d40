package browser

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeElement struct {
	visible bool
	enabled bool
	text    string
	clicked bool
}

func (e *fakeElement) Visible() (bool, error) { return e.visible, nil }
func (e *fakeElement) Enabled() (bool, error) { return e.enabled, nil }
func (e *fakeElement) Text() (string, error)  { return e.text, nil }
func (e *fakeElement) Click() error           { e.clicked = true; return nil }

// fakeSession serves canned elements per locator, optionally appearing only
// after a delay to simulate async rendering.
type fakeSession struct {
	mu        sync.Mutex
	elements  map[string][]Element
	appearAt  map[string]time.Time
	findErr   error
	findCalls int
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		elements: make(map[string][]Element),
		appearAt: make(map[string]time.Time),
	}
}

func (s *fakeSession) set(loc Locator, els ...Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[loc.String()] = els
}

func (s *fakeSession) setAfter(loc Locator, delay time.Duration, els ...Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[loc.String()] = els
	s.appearAt[loc.String()] = time.Now().Add(delay)
}

func (s *fakeSession) Find(loc Locator) ([]Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.findCalls++
	if s.findErr != nil {
		return nil, s.findErr
	}

	key := loc.String()
	if at, ok := s.appearAt[key]; ok && time.Now().Before(at) {
		return nil, nil
	}
	return s.elements[key], nil
}

func (s *fakeSession) Navigate(string) error    { return nil }
func (s *fakeSession) Content() (string, error) { return "", nil }
func (s *fakeSession) Close() error             { return nil }

func TestWaitForPresenceReturnsNilOnTimeout(t *testing.T) {
	session := newFakeSession()
	timeout := 300 * time.Millisecond

	start := time.Now()
	el, err := WaitForPresence(context.Background(), session, CSS(".never"), timeout)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Nil(t, el)
	// Bounded: returns within timeout plus polling slack, never hangs.
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, timeout+DefaultPollInterval+100*time.Millisecond)
}

func TestWaitForPresenceFindsImmediateElement(t *testing.T) {
	session := newFakeSession()
	loc := CSS(".results")
	session.set(loc, &fakeElement{text: "rates"})

	el, err := WaitForPresence(context.Background(), session, loc, time.Second)

	require.NoError(t, err)
	require.NotNil(t, el)
	text, err := el.Text()
	require.NoError(t, err)
	assert.Equal(t, "rates", text)
}

func TestWaitForPresenceFindsLateElement(t *testing.T) {
	session := newFakeSession()
	loc := CSS(".late")
	session.setAfter(loc, 300*time.Millisecond, &fakeElement{})

	el, err := WaitForPresence(context.Background(), session, loc, 2*time.Second)

	require.NoError(t, err)
	assert.NotNil(t, el)
}

func TestWaitForPresencePropagatesSessionError(t *testing.T) {
	session := newFakeSession()
	session.findErr = ErrSessionClosed

	el, err := WaitForPresence(context.Background(), session, CSS(".any"), time.Second)

	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Nil(t, el)
}

func TestWaitForInteractableSkipsHiddenElements(t *testing.T) {
	session := newFakeSession()
	loc := CSS("button")
	session.set(loc,
		&fakeElement{visible: false, enabled: true},
		&fakeElement{visible: true, enabled: false},
	)

	el, err := WaitForInteractable(context.Background(), session, loc, 300*time.Millisecond)

	require.NoError(t, err)
	assert.Nil(t, el)
}

func TestWaitForInteractablePicksFirstUsableElement(t *testing.T) {
	session := newFakeSession()
	loc := CSS("button")
	target := &fakeElement{visible: true, enabled: true, text: "book now"}
	session.set(loc, &fakeElement{visible: false}, target)

	el, err := WaitForInteractable(context.Background(), session, loc, time.Second)

	require.NoError(t, err)
	assert.Same(t, Element(target), el)
}

func TestWaitCancelledContext(t *testing.T) {
	session := newFakeSession()
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := WaitForPresence(ctx, session, CSS(".never"), time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindOptional(t *testing.T) {
	session := newFakeSession()
	loc := CSS(".price")
	session.set(loc, &fakeElement{text: "$120"})

	el, err := FindOptional(session, loc)
	require.NoError(t, err)
	require.NotNil(t, el)

	missing, err := FindOptional(session, CSS(".absent"))
	require.NoError(t, err)
	assert.Nil(t, missing)
	// A single immediate lookup probes exactly once per call.
	assert.Equal(t, 2, session.findCalls)
}

func TestFindAllOptionalReturnsEmptyForNoMatch(t *testing.T) {
	session := newFakeSession()

	els, err := FindAllOptional(session, CSS(".absent"))

	require.NoError(t, err)
	assert.Empty(t, els)
}

func TestFindAllOptionalPreservesOrder(t *testing.T) {
	session := newFakeSession()
	loc := CSS(".rate")
	first := &fakeElement{text: "first"}
	second := &fakeElement{text: "second"}
	session.set(loc, first, second)

	els, err := FindAllOptional(session, loc)

	require.NoError(t, err)
	require.Len(t, els, 2)
	assert.Same(t, Element(first), els[0])
	assert.Same(t, Element(second), els[1])
}
