// Package browser is the seam between page objects and a browser automation
// library. Every query is selector based and re-evaluated on each call; no
// element handles are cached across calls.
package browser

import (
	"context"
	"errors"
)

// ErrElementNotFound is returned by single-element queries when the selector
// matches nothing at the time of the call.
var ErrElementNotFound = errors.New("element not found")

// Page is one browser tab pointed at the storefront.
//
// Single-element methods act on the first match of the selector. Actions
// (Click, Fill, SelectOption) rely on the driver's own actionability waits;
// queries report the current state immediately and leave waiting to callers.
type Page interface {
	// Goto navigates to a path relative to the configured base URL.
	Goto(ctx context.Context, path string) error
	Reload(ctx context.Context) error
	// URL returns the current document URL.
	URL(ctx context.Context) (string, error)

	Click(ctx context.Context, selector string) error
	// Fill clears the input and types value.
	Fill(ctx context.Context, selector, value string) error
	Clear(ctx context.Context, selector string) error
	SelectOption(ctx context.Context, selector, value string) error

	Count(ctx context.Context, selector string) (int, error)
	IsVisible(ctx context.Context, selector string) (bool, error)
	IsEnabled(ctx context.Context, selector string) (bool, error)
	TextContent(ctx context.Context, selector string) (string, error)
	AllTextContents(ctx context.Context, selector string) ([]string, error)
	InputValue(ctx context.Context, selector string) (string, error)
	// Attribute returns the attribute value and whether it is present.
	Attribute(ctx context.Context, selector, name string) (string, bool, error)
	// Property reads a DOM property such as "tagName".
	Property(ctx context.Context, selector, name string) (string, error)
	// OptionValues lists the value of every <option> under the select.
	OptionValues(ctx context.Context, selector string) ([]string, error)
	// HasText reports whether a visible element contains text.
	HasText(ctx context.Context, text string) (bool, error)

	Storage
	Close() error
}

// Storage is the page origin's localStorage.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	ClearStorage(ctx context.Context) error
}

// Browser opens isolated pages.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Launcher starts a Browser.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}
