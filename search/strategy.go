// Package search orchestrates a full engine search: one browser session per
// call, driven through navigation, consent handling, extraction, and
// teardown according to a per-engine strategy.
package search

import (
	"net/url"
	"strconv"
)

// Strategy bundles everything engine-specific: how to build result and image
// URLs, which selectors locate content, and how additional results load.
// The orchestration sequence itself is engine-independent.
type Strategy struct {
	Name string

	// SearchURL builds the text-results URL. maxLinks is a hint; engines
	// that page by URL parameter use it, infinite-scroll engines ignore it.
	SearchURL func(query string, maxLinks int) string

	// ImagesURL builds the image-results URL for the same query.
	ImagesURL func(query string) string

	// ResultsContainer must exist before extraction starts.
	ResultsContainer string

	// ConsentSelector locates an optional consent dialog button. Empty
	// means the engine shows none.
	ConsentSelector string

	// TextSelectors are tried in order; all matches across all selectors
	// contribute to the answer text.
	TextSelectors []string

	// LinksSelector locates anchor elements for result links.
	LinksSelector string

	// LoadMoreOnScroll marks engines whose result list grows when the
	// page is scrolled instead of accepting a count parameter.
	LoadMoreOnScroll bool

	// ImagesContainer must exist before image extraction; unlike consent
	// this wait is strict, since the image page was explicitly requested.
	ImagesContainer string

	// ImagesSelector locates image elements on the image-results page.
	ImagesSelector string

	// ImageSourceAttrs are tried in order on each image element; lazily
	// loaded grids keep the real URL in a data attribute.
	ImageSourceAttrs []string

	// BaseURL resolves relative hrefs found in the result list.
	BaseURL string
}

var googleStrategy = Strategy{
	Name: "google",
	SearchURL: func(query string, maxLinks int) string {
		v := url.Values{}
		v.Set("q", query)
		v.Set("num", strconv.Itoa(maxLinks))
		v.Set("hl", "en")
		return "https://www.google.com/search?" + v.Encode()
	},
	ImagesURL: func(query string) string {
		v := url.Values{}
		v.Set("q", query)
		v.Set("tbm", "isch")
		v.Set("hl", "en")
		return "https://www.google.com/search?" + v.Encode()
	},
	ResultsContainer: "#search",
	ConsentSelector:  "#L2AGLb",
	TextSelectors: []string{
		"div.Z0LcW",          // answer box
		"div.kno-rdesc span", // knowledge panel description
		"div.VwiC3b",         // organic snippets
		"span.st",            // legacy snippet markup
	},
	LinksSelector:    "div.yuRUbf > a",
	LoadMoreOnScroll: false, // the num parameter controls result count
	ImagesContainer:  "#islrg",
	ImagesSelector:   "#islrg img.rg_i",
	ImageSourceAttrs: []string{"data-src", "src"},
	BaseURL:          "https://www.google.com",
}

var duckDuckGoStrategy = Strategy{
	Name: "duckduckgo",
	SearchURL: func(query string, _ int) string {
		v := url.Values{}
		v.Set("q", query)
		v.Set("ia", "web")
		return "https://duckduckgo.com/?" + v.Encode()
	},
	ImagesURL: func(query string) string {
		v := url.Values{}
		v.Set("q", query)
		v.Set("iax", "images")
		v.Set("ia", "images")
		return "https://duckduckgo.com/?" + v.Encode()
	},
	ResultsContainer: "#links",
	ConsentSelector:  "", // no consent interstitial
	TextSelectors: []string{
		".result__snippet",
	},
	LinksSelector:    "a.result__a",
	LoadMoreOnScroll: true,
	ImagesContainer:  ".tile--img",
	ImagesSelector:   "img.tile--img__img",
	ImageSourceAttrs: []string{"data-src", "src"},
	BaseURL:          "https://duckduckgo.com",
}

// Registry returns the supported engines keyed by name.
func Registry() map[string]Strategy {
	return map[string]Strategy{
		googleStrategy.Name:     googleStrategy,
		duckDuckGoStrategy.Name: duckDuckGoStrategy,
	}
}
