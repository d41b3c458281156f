// Package marketscreener reads the vendor's fundamentals grid. The grid
// renders only a window of period columns at a time behind a horizontal
// slider, so the adapter drives a headless browser: dismiss the cookie
// banner, discover the slider's pixel-to-cell sensitivity by nudging it and
// observing the cell margin shift, then step across until the scrollbar is
// exhausted, snapshotting the visible columns at each stop.
package marketscreener

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quantfetch/quantfetch/adapter"
	"github.com/quantfetch/quantfetch/config"
	"github.com/quantfetch/quantfetch/internal/browser"
	"github.com/quantfetch/quantfetch/internal/parse"
	"github.com/quantfetch/quantfetch/pkg/fault"
	"github.com/quantfetch/quantfetch/pkg/models"
)

const sourceName = "marketscreener"

const (
	cookieButton  = "#didomi-notice-agree-button"
	gridSelector  = "table.table--small"
	gridWait      = 15 * time.Second
	nudgePixels   = 10
	maxSliderStep = 80
)

// session is the slice of the browser layer the walk needs; tests inject a
// fake.
type session interface {
	WaitVisible(selector string, timeout time.Duration) error
	DismissPopup(selector string)
	Eval(script string, dest any) error
	HTML() (string, error)
	Close()
}

// Adapter reads the fundamentals grid. Instances are not safe for concurrent
// use: one browser session serves one call at a time.
type Adapter struct {
	identity config.Identity
	baseURL  string
	open     func(ctx context.Context, url string) (session, error)
}

// Option adjusts adapter construction.
type Option func(*Adapter)

// WithBaseURL overrides the site origin; used by tests.
func WithBaseURL(u string) Option {
	return func(a *Adapter) { a.baseURL = strings.TrimRight(u, "/") }
}

// WithOpener replaces the browser launcher; used by tests.
func WithOpener(open func(ctx context.Context, url string) (session, error)) Option {
	return func(a *Adapter) { a.open = open }
}

// New creates an adapter bound to the process identity. The browser binary
// is resolved lazily on first use; a missing binary surfaces as a
// Configuration fault from the call, not from New.
func New(id config.Identity, opts ...Option) *Adapter {
	a := &Adapter{
		identity: id,
		baseURL:  "https://www.marketscreener.com",
	}
	a.open = func(ctx context.Context, url string) (session, error) {
		return browser.Open(ctx, a.identity, url)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func init() {
	adapter.Register(sourceName, func(id config.Identity) (adapter.Adapter, error) {
		return New(id), nil
	})
}

// Name implements adapter.Adapter.
func (a *Adapter) Name() string { return sourceName }

// Close implements adapter.Adapter; sessions are scoped per call.
func (a *Adapter) Close(ctx context.Context) error { return nil }

// Browser scripts. The slider is a synthetic scrollbar: dragging its handle
// shifts the first data cell's margin-left by sensitivity pixels per handle
// pixel.
const (
	marginScript    = `parseFloat(getComputedStyle(document.querySelector("%s tbody td")).marginLeft) || 0`
	moveScript      = `(function(px){var h=document.querySelector(".slider-handle");var r=h.getBoundingClientRect();var opts={bubbles:true,clientX:r.x+r.width/2,clientY:r.y+r.height/2};h.dispatchEvent(new MouseEvent("mousedown",opts));opts.clientX+=px;h.dispatchEvent(new MouseEvent("mousemove",opts));h.dispatchEvent(new MouseEvent("mouseup",opts));})(%d)`
	residualScript  = `(function(){var t=document.querySelector(".slider-track");var h=document.querySelector(".slider-handle");if(!t||!h)return 0;return t.getBoundingClientRect().right-h.getBoundingClientRect().right;})()`
	cellWidthScript = `document.querySelector("%s tbody td").getBoundingClientRect().width`
)

// Financials walks the statement grid for one company slug and returns the
// collected statement. Monetary values are quoted in millions on the page
// and come back in absolute units; EPS-like variables stay as plain floats;
// "-" cells are null.
func (a *Adapter) Financials(ctx context.Context, slug string) (*models.Statement, error) {
	if slug == "" {
		return nil, fault.New(fault.InvalidInput, sourceName, "financials", "empty company slug")
	}

	s, err := a.open(ctx, fmt.Sprintf("%s/quote/stock/%s/finances/", a.baseURL, slug))
	if err != nil {
		return nil, err
	}
	defer s.Close()

	s.DismissPopup(cookieButton)
	if err := s.WaitVisible(gridSelector, gridWait); err != nil {
		return nil, fault.Wrap(fault.SourceSchemaChanged, sourceName, "financials", err)
	}

	st := models.NewStatement(models.Annual, "")
	if err := a.collectVisible(s, st); err != nil {
		return nil, err
	}

	step, err := a.sliderStep(s)
	if err != nil {
		return nil, err
	}
	for step > 0 {
		var residual float64
		if err := s.Eval(residualScript, &residual); err != nil {
			return nil, err
		}
		if residual <= 0 {
			break
		}
		move := step
		if float64(move) > residual {
			move = int(residual)
		}
		if move <= 0 {
			break
		}
		if err := s.Eval(fmt.Sprintf(moveScript, move), nil); err != nil {
			return nil, err
		}
		if err := a.collectVisible(s, st); err != nil {
			return nil, err
		}
	}

	if len(st.Periods) == 0 {
		return nil, fault.New(fault.SourceSchemaChanged, sourceName, "financials",
			"grid walk collected no periods")
	}
	return st, nil
}

// sliderStep discovers the handle pixels needed to advance one column:
// nudge the handle a fixed amount, observe how far the cells shifted, then
// scale a cell width by the ratio.
func (a *Adapter) sliderStep(s session) (int, error) {
	margin := fmt.Sprintf(marginScript, gridSelector)

	var before, after, cellWidth float64
	if err := s.Eval(margin, &before); err != nil {
		return 0, err
	}
	if err := s.Eval(fmt.Sprintf(moveScript, nudgePixels), nil); err != nil {
		return 0, err
	}
	if err := s.Eval(margin, &after); err != nil {
		return 0, err
	}
	shift := before - after
	if shift <= 0 {
		// Nothing moved: the grid fits without scrolling.
		return 0, nil
	}
	if err := s.Eval(fmt.Sprintf(cellWidthScript, gridSelector), &cellWidth); err != nil {
		return 0, err
	}
	sensitivity := shift / nudgePixels
	step := int(cellWidth / sensitivity)
	if step <= 0 || step > maxSliderStep {
		return 0, fault.Newf(fault.SourceSchemaChanged, sourceName, "financials",
			"implausible slider step %d from sensitivity %.2f", step, sensitivity)
	}
	return step, nil
}

// collectVisible snapshots the DOM and folds every currently visible period
// column into the statement. Revisiting a column overwrites with equal
// values, so the walk is idempotent.
func (a *Adapter) collectVisible(s session, st *models.Statement) error {
	html, err := s.HTML()
	if err != nil {
		return err
	}
	tables, err := parse.Tables(html)
	if err != nil {
		return err
	}

	for _, t := range tables {
		if len(t.Header) < 2 || len(t.Rows) == 0 {
			continue
		}
		for _, row := range t.Rows {
			if len(row) < 2 {
				continue
			}
			variable := row[0]
			if variable == "" {
				continue
			}
			for col := 1; col < len(row) && col < len(t.Header); col++ {
				period := t.Header[col]
				if period == "" {
					continue
				}
				st.Set(period, variable, gridValue(variable, row[col]))
			}
		}
		return nil // first plausible grid wins
	}
	return fault.New(fault.SourceSchemaChanged, sourceName, "financials",
		"snapshot carries no statement grid")
}

// gridValue parses one grid cell. Per-share variables are plain floats;
// everything else is quoted in millions and converted to absolute units.
func gridValue(variable, cell string) *float64 {
	v, ok := parse.Number(cell)
	if !ok || v == nil {
		return nil
	}
	if isPerShare(variable) {
		return v
	}
	abs := float64(parse.Millions(*v))
	return &abs
}

func isPerShare(variable string) bool {
	lower := strings.ToLower(variable)
	return strings.Contains(lower, "eps") || strings.Contains(lower, "per share") ||
		strings.Contains(lower, "dividend / share")
}
