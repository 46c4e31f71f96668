package provider

import (
	"context"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"wfmu/internal/errutil"
	"wfmu/internal/httputil"
	"wfmu/internal/show"
)

// WFMU implements the Provider interface for a show's playlist page on wfmu.org.
type WFMU struct {
	base    *url.URL // e.g. https://www.wfmu.org
	code    string   // show code, e.g. "LM"
	fetcher *httputil.Fetcher
}

// NewWFMU creates a provider for the show identified by code.
func NewWFMU(baseURL, code string, fetcher *httputil.Fetcher) (*WFMU, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(errutil.ErrInvalidURL, err.Error())
	}
	return &WFMU{
		base:    base,
		code:    code,
		fetcher: fetcher,
	}, nil
}

// SourceURL returns the show's listing page.
func (w *WFMU) SourceURL() string {
	return w.base.String() + "/playlists/" + w.code
}

// Entries fetches the listing page and parses its entries.
func (w *WFMU) Entries(ctx context.Context, opts Options) ([]show.Entry, error) {
	source := w.SourceURL()
	zerolog.Ctx(ctx).Debug().Str("url", source).Msg("fetching listing page")

	doc, err := w.fetcher.Document(ctx, source)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", source)
	}

	entries := parseEntries(doc, w.base, opts)
	zerolog.Ctx(ctx).Debug().Int("entries", len(entries)).Msg("parsed listing page")
	return entries, nil
}
