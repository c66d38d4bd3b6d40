package browser

import (
	"context"
	"time"
)

// DefaultPollInterval is how often the bounded waits re-probe the session.
const DefaultPollInterval = 250 * time.Millisecond

// WaitForPresence polls until an element matching loc exists in the document,
// returning nil (not an error) when timeout elapses first. Page rendering is
// asynchronous, so "not there yet" is an ordinary branch for callers; only a
// dead session or a cancelled context fails.
func WaitForPresence(ctx context.Context, s Session, loc Locator, timeout time.Duration) (Element, error) {
	return poll(ctx, s, loc, timeout, func(Element) (bool, error) {
		return true, nil
	})
}

// WaitForInteractable is WaitForPresence with the stronger condition that the
// element is visible and enabled for interaction.
func WaitForInteractable(ctx context.Context, s Session, loc Locator, timeout time.Duration) (Element, error) {
	return poll(ctx, s, loc, timeout, func(el Element) (bool, error) {
		visible, err := el.Visible()
		if err != nil || !visible {
			return false, err
		}
		return el.Enabled()
	})
}

// FindOptional is a single immediate lookup: nil when absent, no polling.
func FindOptional(s Session, loc Locator) (Element, error) {
	matches, err := s.Find(loc)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

// FindAllOptional is a single immediate lookup returning all matches in
// document order; no match is an empty slice.
func FindAllOptional(s Session, loc Locator) ([]Element, error) {
	return s.Find(loc)
}

func poll(ctx context.Context, s Session, loc Locator, timeout time.Duration, ready func(Element) (bool, error)) (Element, error) {
	deadline := time.Now().Add(timeout)

	for {
		matches, err := s.Find(loc)
		if err != nil {
			return nil, err
		}

		for _, el := range matches {
			ok, err := ready(el)
			if err != nil {
				return nil, err
			}
			if ok {
				return el, nil
			}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}

		interval := DefaultPollInterval
		if remaining < interval {
			interval = remaining
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}
