package browser

import "sync"

// Launcher defers the playwright startup until the first session is
// requested. A process whose registered adapters never open a session does
// not pay for a browser, and does not need the driver installed.
type Launcher struct {
	opts *Options

	mu sync.Mutex
	b  *Browser
}

func NewLauncher(opts *Options) *Launcher {
	return &Launcher{opts: opts}
}

// NewSession launches the browser on first use, then opens a fresh page.
// A failed launch is not cached; the next request retries it.
func (l *Launcher) NewSession() (Session, error) {
	l.mu.Lock()
	if l.b == nil {
		b, err := New(l.opts)
		if err != nil {
			l.mu.Unlock()
			return nil, err
		}
		l.b = b
	}
	b := l.b
	l.mu.Unlock()

	return b.NewSession()
}

// Close shuts the browser down if it was ever launched.
func (l *Launcher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.b == nil {
		return nil
	}
	err := l.b.Close()
	l.b = nil
	return err
}
