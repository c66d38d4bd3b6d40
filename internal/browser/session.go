package browser

import "errors"

// ErrSessionClosed signals that the underlying browser session is unusable.
// It is the only error the element-lookup layer produces: absence of an
// element is an ordinary result, never an error.
var ErrSessionClosed = errors.New("browser session closed")

// Strategy selects how a locator value is interpreted.
type Strategy string

const (
	ByCSS   Strategy = "css"
	ByXPath Strategy = "xpath"
	ByText  Strategy = "text"
)

// Locator identifies elements on a page by strategy and value.
type Locator struct {
	Strategy Strategy
	Value    string
}

func CSS(value string) Locator   { return Locator{Strategy: ByCSS, Value: value} }
func XPath(value string) Locator { return Locator{Strategy: ByXPath, Value: value} }
func Text(value string) Locator  { return Locator{Strategy: ByText, Value: value} }

func (l Locator) String() string {
	return string(l.Strategy) + "=" + l.Value
}

// Session is the page handle adapters and the wait utility operate on. The
// playwright-backed implementation lives in this package; tests use fakes.
// A Session is exclusively owned by one scraper instance for its lifetime.
type Session interface {
	// Find returns the elements matching loc in document order. No match is
	// an empty slice, not an error; Find fails only with ErrSessionClosed.
	Find(loc Locator) ([]Element, error)
	// Navigate loads url in the session's page.
	Navigate(url string) error
	// Content returns the current page HTML.
	Content() (string, error)
	Close() error
}

// Element is one matched page element.
type Element interface {
	Visible() (bool, error)
	Enabled() (bool, error)
	Text() (string, error)
	Click() error
}
