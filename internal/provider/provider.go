// Package provider defines the interface for show archive sources and the
// WFMU playlist-page implementation.
package provider

import (
	"context"

	"wfmu/internal/show"
)

// Options are early-exit guards applied while walking the listing page.
// Zero values disable them.
type Options struct {
	// CutoffYear stops parsing at the first entry dated in or before this year.
	CutoffYear int
	// MaxEntries stops parsing once this many entries were collected.
	MaxEntries int
}

// Provider is the interface that show archive sources must implement.
type Provider interface {
	// SourceURL is the listing page entries are scraped from.
	SourceURL() string

	// Entries fetches the listing page and returns its entries in page order.
	Entries(ctx context.Context, opts Options) ([]show.Entry, error)
}
