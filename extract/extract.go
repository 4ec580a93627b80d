// Package extract applies CSS selectors to rendered-page HTML snapshots to
// pull out answer text, result links, and image URLs. It never treats an
// empty page as an error: absence of matches yields empty results.
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Parse builds a queryable document from rendered page HTML.
func Parse(rawHTML string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse page HTML: %w", err)
	}
	return doc, nil
}

// Text applies each selector in turn, collects per-element text in document
// order, filters out empty strings, and joins everything found across all
// selectors with newlines. Zero matches on every selector yields "" — a page
// without an answer box is not a failure.
func Text(doc *goquery.Document, selectors []string) (string, error) {
	var fragments []string
	for _, q := range selectors {
		sel, err := cascadia.Compile(q)
		if err != nil {
			return "", fmt.Errorf("invalid selector %q: %w", q, err)
		}
		doc.FindMatcher(sel).Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				fragments = append(fragments, text)
			}
		})
	}
	return strings.Join(fragments, "\n"), nil
}

// Links collects the target URL of each element matched by selector, in page
// order. Relative URLs are resolved against baseURL; non-http(s) schemes and
// duplicates are dropped (order-preserving).
func Links(doc *goquery.Document, selector, baseURL string) ([]string, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	links := []string{}
	seen := make(map[string]struct{})
	doc.FindMatcher(sel).Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}

		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		// Skip fragments, javascript:, mailto: etc.
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}

		abs := resolved.String()
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	})
	return links, nil
}

// Images collects image source URLs from elements matched by selector, in
// page order, stopping once max URLs are collected. For each element the
// source attributes are tried in order — lazy-loaded grids keep the real URL
// in data-src while src holds a placeholder. Data URIs and duplicates are
// skipped.
func Images(doc *goquery.Document, selector string, attrs []string, baseURL string, max int) ([]string, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	images := []string{}
	seen := make(map[string]struct{})
	doc.FindMatcher(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(images) >= max {
			return false
		}

		src := firstAttr(s, attrs)
		if src == "" {
			return true
		}

		resolved, err := base.Parse(src)
		if err != nil {
			return true
		}
		if resolved.Scheme == "data" {
			return true
		}

		abs := resolved.String()
		if _, ok := seen[abs]; ok {
			return true
		}
		seen[abs] = struct{}{}
		images = append(images, abs)
		return true
	})
	return images, nil
}

// firstAttr returns the first non-empty attribute value among attrs.
func firstAttr(s *goquery.Selection, attrs []string) string {
	for _, a := range attrs {
		if v, ok := s.Attr(a); ok {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
