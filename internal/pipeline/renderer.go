package pipeline

import (
	"context"
	"time"
)

// Response is a network response observed while the page is open.
type Response struct {
	URL         string
	Status      int
	ContentType string
	Body        []byte
}

// Target selects an element to click.
//
// With Text set, the first of the first Limit elements matching Selector whose text
// contains Text (case-insensitively) is clicked; a zero Limit inspects all of them.
// Without Text, element Nth is clicked. Scope restricts the search to a container and is
// ignored when the container is absent.
type Target struct {
	Selector string
	Text     string
	Scope    string
	Nth      int
	Limit    int
}

// Renderer is the browser capability the pipeline drives. Implementations must be
// best-effort: a failed call returns an error and leaves the page usable.
type Renderer interface {
	// Navigate loads url and waits for the page to render, bounded by timeout.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// Markup returns the current document HTML.
	Markup(ctx context.Context) (string, error)
	// Evaluate runs a read-only script in the page and returns its result as plain data.
	Evaluate(ctx context.Context, script string, arg any) (any, error)
	// OnResponse registers fn for every subsequent response until the returned func is
	// called. fn may be called from another goroutine.
	OnResponse(fn func(Response)) (remove func())
	// Interact clicks the target and reports whether an element was found.
	Interact(ctx context.Context, target Target) (bool, error)
	// Dismiss closes any open dialog.
	Dismiss(ctx context.Context) error
	// Settle waits until network activity has quiesced or max elapses.
	Settle(ctx context.Context, max time.Duration) error
	// URL returns the current page address.
	URL() string
}
