// Package browser drives a headless browser session for sources whose data
// only materializes after client-side scripting. A Session is single-threaded
// and stateful: one adapter method owns one session and must close it on
// every exit path. The browser binary path and the User-Agent come from the
// process identity.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/quantfetch/quantfetch/config"
	"github.com/quantfetch/quantfetch/pkg/fault"
)

// popupTimeout bounds waits for elements that may legitimately be absent
// (cookie banners, promo popups). Expiry is not an error for those waits.
const popupTimeout = 3 * time.Second

// Session wraps a chromedp browser context.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
}

// Open launches the headless browser and navigates to url. A Configuration
// fault is returned when no browser binary is configured.
func Open(ctx context.Context, id config.Identity, url string) (*Session, error) {
	binary, err := id.RequireBrowserBinary()
	if err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(binary),
		chromedp.UserAgent(id.UserAgent()),
		chromedp.Headless,
		chromedp.DisableGPU,
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelBrowser, cancelAlloc},
	}
	if err := chromedp.Run(browserCtx, chromedp.Navigate(url)); err != nil {
		s.Close()
		return nil, classify(err, "open")
	}
	return s, nil
}

// WaitVisible blocks until the selector is visible or the timeout elapses.
func (s *Session) WaitVisible(selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return classify(err, "wait_for")
	}
	return nil
}

// Click clicks the first node matching the selector.
func (s *Session) Click(selector string) error {
	if err := chromedp.Run(s.ctx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return classify(err, "click")
	}
	return nil
}

// DismissPopup clicks the selector if it appears within the short popup
// timeout. A popup that never appears is not an error.
func (s *Session) DismissPopup(selector string) {
	ctx, cancel := context.WithTimeout(s.ctx, popupTimeout)
	defer cancel()
	_ = chromedp.Run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
}

// ScrollBy scrolls the window by the given deltas.
func (s *Session) ScrollBy(dx, dy int) error {
	script := fmt.Sprintf("window.scrollBy(%d,%d)", dx, dy)
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, nil)); err != nil {
		return classify(err, "scroll_by")
	}
	return nil
}

// Eval runs a script and decodes its result into dest (pass nil to discard).
func (s *Session) Eval(script string, dest any) error {
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, dest)); err != nil {
		return classify(err, "execute_script")
	}
	return nil
}

// HTML snapshots the current DOM as an HTML string.
func (s *Session) HTML() (string, error) {
	var html string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", classify(err, "dom_snapshot")
	}
	return html, nil
}

// Close tears the session down. Safe to call more than once.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
}

func classify(err error, op string) error {
	switch {
	case errors.Is(err, context.Canceled):
		return fault.Wrap(fault.Cancelled, "browser", op, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fault.Wrap(fault.Timeout, "browser", op, err)
	}
	return fault.Wrap(fault.Transport, "browser", op, err)
}
