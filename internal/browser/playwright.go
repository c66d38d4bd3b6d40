package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// PageSession adapts a playwright page to the Session interface.
type PageSession struct {
	page playwright.Page
}

func NewPageSession(page playwright.Page) *PageSession {
	return &PageSession{page: page}
}

func (s *PageSession) Page() playwright.Page {
	return s.page
}

func (s *PageSession) Navigate(url string) error {
	if s.page.IsClosed() {
		return ErrSessionClosed
	}

	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return s.wrapErr(err)
	}
	return nil
}

func (s *PageSession) Content() (string, error) {
	if s.page.IsClosed() {
		return "", ErrSessionClosed
	}

	html, err := s.page.Content()
	if err != nil {
		return "", s.wrapErr(err)
	}
	return html, nil
}

func (s *PageSession) Close() error {
	if s.page.IsClosed() {
		return nil
	}
	return s.page.Close()
}

func (s *PageSession) Find(loc Locator) ([]Element, error) {
	if s.page.IsClosed() {
		return nil, ErrSessionClosed
	}

	locator := s.page.Locator(selectorFor(loc))
	count, err := locator.Count()
	if err != nil {
		if s.page.IsClosed() {
			return nil, fmt.Errorf("%w: %v", ErrSessionClosed, err)
		}
		// Any other driver failure still means the session is unusable for
		// element queries; callers recover by recreating the session.
		return nil, fmt.Errorf("%w: locator %s: %v", ErrSessionClosed, loc, err)
	}

	elements := make([]Element, 0, count)
	for i := 0; i < count; i++ {
		elements = append(elements, &pageElement{locator: locator.Nth(i), session: s})
	}
	return elements, nil
}

func selectorFor(loc Locator) string {
	switch loc.Strategy {
	case ByXPath:
		return "xpath=" + loc.Value
	case ByText:
		return "text=" + loc.Value
	default:
		return loc.Value
	}
}

type pageElement struct {
	locator playwright.Locator
	session *PageSession
}

func (e *pageElement) Visible() (bool, error) {
	visible, err := e.locator.IsVisible()
	if err != nil {
		return false, e.session.wrapErr(err)
	}
	return visible, nil
}

func (e *pageElement) Enabled() (bool, error) {
	enabled, err := e.locator.IsEnabled()
	if err != nil {
		return false, e.session.wrapErr(err)
	}
	return enabled, nil
}

func (e *pageElement) Text() (string, error) {
	text, err := e.locator.TextContent()
	if err != nil {
		return "", e.session.wrapErr(err)
	}
	return text, nil
}

func (e *pageElement) Click() error {
	if err := e.locator.Click(); err != nil {
		return e.session.wrapErr(err)
	}
	return nil
}

func (s *PageSession) wrapErr(err error) error {
	if s.page.IsClosed() {
		return fmt.Errorf("%w: %v", ErrSessionClosed, err)
	}
	return err
}
