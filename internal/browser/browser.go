// Package browser renders the schedule page with a headless Chromium driven by
// playwright-go.
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	pw "github.com/playwright-community/playwright-go"

	"github.com/pfrederiksen/owg-schedule/internal/logger"
	"github.com/pfrederiksen/owg-schedule/internal/pipeline"
)

const (
	quietPeriod  = 100 * time.Millisecond
	pollInterval = 25 * time.Millisecond
	clickTimeout = 5 * time.Second
)

// findText returns the index of the first of the first limit elements whose text contains
// the needle, or -1.
const findText = `(els, [needle, limit]) => {
  const n = limit > 0 ? Math.min(els.length, limit) : els.length;
  const want = needle.toLowerCase();
  for (let i = 0; i < n; i++) {
    const txt = els[i].textContent;
    if (txt && txt.toLowerCase().includes(want)) return i;
  }
  return -1;
}`

// Options configures the browser.
type Options struct {
	Headless  bool
	UserAgent string
	// Install downloads the driver and Chromium before launching.
	Install bool
}

// Renderer implements pipeline.Renderer on a single page.
type Renderer struct {
	pw      *pw.Playwright
	browser pw.Browser
	page    pw.Page

	inflight atomic.Int64
	pending  sync.WaitGroup
	busy     atomic.Int64

	mu          sync.Mutex
	nextID      int
	subscribers map[int]func(pipeline.Response)
	closed      bool
}

var _ pipeline.Renderer = (*Renderer)(nil)

// Launch starts Chromium and opens a page.
func Launch(opts Options) (*Renderer, error) {
	if opts.Install {
		if err := pw.Install(&pw.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("installing playwright: %w", err)
		}
	}

	instance, err := pw.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	browser, err := instance.Chromium.Launch(pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(opts.Headless),
		Args:     []string{"--no-sandbox", "--disable-setuid-sandbox"},
	})
	if err != nil {
		_ = instance.Stop()
		return nil, fmt.Errorf("launching chromium: %w", err)
	}

	ctxOpts := pw.BrowserNewContextOptions{
		Viewport: &pw.Size{Width: 1280, Height: 900},
	}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = pw.String(opts.UserAgent)
	}
	bctx, err := browser.NewContext(ctxOpts)
	if err != nil {
		_ = browser.Close()
		_ = instance.Stop()
		return nil, fmt.Errorf("creating browser context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = browser.Close()
		_ = instance.Stop()
		return nil, fmt.Errorf("creating page: %w", err)
	}

	r := &Renderer{
		pw:          instance,
		browser:     browser,
		page:        page,
		subscribers: make(map[int]func(pipeline.Response)),
	}
	r.watch()
	return r, nil
}

func (r *Renderer) watch() {
	r.page.OnRequest(func(pw.Request) { r.inflight.Add(1) })
	r.page.OnRequestFinished(func(pw.Request) { r.inflight.Add(-1) })
	r.page.OnRequestFailed(func(pw.Request) { r.inflight.Add(-1) })

	r.page.OnResponse(func(resp pw.Response) {
		subs, ok := r.acquire()
		if !ok {
			return
		}

		// Reading the body blocks on the driver, so it must not run on the event goroutine.
		r.busy.Add(1)
		go func() {
			defer r.pending.Done()
			defer r.busy.Add(-1)

			body, err := resp.Body()
			if err != nil {
				logger.Debug("Response body unavailable", logger.Fields{"url": resp.URL(), "error": err.Error()})
				return
			}
			out := pipeline.Response{
				URL:         resp.URL(),
				Status:      resp.Status(),
				ContentType: resp.Headers()["content-type"],
				Body:        body,
			}
			for _, fn := range subs {
				fn(out)
			}
		}()
	})
}

// acquire snapshots the subscribers and registers a pending handler. It reports false
// once the renderer is closed or nobody is listening.
func (r *Renderer) acquire() ([]func(pipeline.Response), bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || len(r.subscribers) == 0 {
		return nil, false
	}
	subs := make([]func(pipeline.Response), 0, len(r.subscribers))
	for _, fn := range r.subscribers {
		subs = append(subs, fn)
	}
	r.pending.Add(1)
	return subs, true
}

// drain stops new handlers and waits for running ones.
func (r *Renderer) drain() {
	r.mu.Lock()
	r.closed = true
	r.subscribers = make(map[int]func(pipeline.Response))
	r.mu.Unlock()
	r.pending.Wait()
}

// Navigate loads url, waiting for the network to go idle.
func (r *Renderer) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	_, err := r.page.Goto(url, pw.PageGotoOptions{
		WaitUntil: pw.WaitUntilStateNetworkidle,
		Timeout:   pw.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// Markup returns the rendered document.
func (r *Renderer) Markup(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	html, err := r.page.Content()
	if err != nil {
		return "", fmt.Errorf("reading page content: %w", err)
	}
	return html, nil
}

// Evaluate runs script in the page with arg.
func (r *Renderer) Evaluate(ctx context.Context, script string, arg any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := r.page.Evaluate(script, arg)
	if err != nil {
		return nil, fmt.Errorf("evaluating script: %w", err)
	}
	return v, nil
}

// OnResponse subscribes fn to responses until the returned func is called.
func (r *Renderer) OnResponse(fn func(pipeline.Response)) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subscribers[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subscribers, id)
		r.mu.Unlock()
	}
}

// Interact clicks the element selected by target.
func (r *Renderer) Interact(ctx context.Context, target pipeline.Target) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	candidates := r.page.Locator(target.Selector)
	if target.Scope != "" {
		scope := r.page.Locator(target.Scope).First()
		if n, err := scope.Count(); err == nil && n > 0 {
			candidates = scope.Locator(target.Selector)
		}
	}

	index := target.Nth
	if target.Text != "" {
		v, err := candidates.EvaluateAll(findText, []any{target.Text, target.Limit})
		if err != nil {
			return false, fmt.Errorf("searching %q for %q: %w", target.Selector, target.Text, err)
		}
		index = toInt(v)
	} else {
		n, err := candidates.Count()
		if err != nil {
			return false, fmt.Errorf("counting %q: %w", target.Selector, err)
		}
		if index >= n {
			index = -1
		}
	}
	if index < 0 {
		return false, nil
	}

	el := candidates.Nth(index)
	_ = el.ScrollIntoViewIfNeeded()
	if err := el.Click(pw.LocatorClickOptions{
		Delay:   pw.Float(30),
		Timeout: pw.Float(float64(clickTimeout.Milliseconds())),
	}); err != nil {
		return true, fmt.Errorf("clicking %q: %w", describe(target), err)
	}
	return true, nil
}

// Dismiss presses Escape.
func (r *Renderer) Dismiss(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.page.Keyboard().Press("Escape"); err != nil {
		return fmt.Errorf("pressing escape: %w", err)
	}
	return nil
}

// Settle waits until no request is in flight and no response is being read for a short
// quiet period, or until max has elapsed.
func (r *Renderer) Settle(ctx context.Context, max time.Duration) error {
	deadline := time.Now().Add(max)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var quiet time.Duration
	for {
		if r.inflight.Load() <= 0 && r.busy.Load() == 0 {
			quiet += pollInterval
			if quiet >= quietPeriod {
				return nil
			}
		} else {
			quiet = 0
		}
		if !time.Now().Before(deadline) {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// URL returns the page address.
func (r *Renderer) URL() string {
	return r.page.URL()
}

// Close waits for response handlers and shuts the browser down.
func (r *Renderer) Close() error {
	r.drain()

	var errs []string
	if err := r.browser.Close(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := r.pw.Stop(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("closing browser: %s", strings.Join(errs, "; "))
	}
	return nil
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return -1
	}
}

func describe(t pipeline.Target) string {
	if t.Text != "" {
		return t.Selector + " ~ " + t.Text
	}
	return fmt.Sprintf("%s[%d]", t.Selector, t.Nth)
}
