package search

import (
	"net/url"
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
)

func TestRegistry_SupportedEngines(t *testing.T) {
	reg := Registry()
	for _, name := range []string{"google", "duckduckgo"} {
		s, ok := reg[name]
		if !ok {
			t.Errorf("engine %q missing from registry", name)
			continue
		}
		if s.Name != name {
			t.Errorf("engine %q has mismatched Name %q", name, s.Name)
		}
	}
	if len(reg) != 2 {
		t.Errorf("expected 2 engines, got %d", len(reg))
	}
}

func TestRegistry_StrategiesComplete(t *testing.T) {
	for name, s := range Registry() {
		if s.SearchURL == nil || s.ImagesURL == nil {
			t.Errorf("%s: URL builders must be set", name)
		}
		if s.ResultsContainer == "" {
			t.Errorf("%s: results container selector missing", name)
		}
		if len(s.TextSelectors) == 0 {
			t.Errorf("%s: no text selectors", name)
		}
		if s.LinksSelector == "" {
			t.Errorf("%s: links selector missing", name)
		}
		if s.ImagesContainer == "" || s.ImagesSelector == "" {
			t.Errorf("%s: image selectors missing", name)
		}
		if len(s.ImageSourceAttrs) == 0 {
			t.Errorf("%s: no image source attributes", name)
		}
		if _, err := url.Parse(s.BaseURL); err != nil || s.BaseURL == "" {
			t.Errorf("%s: invalid base URL %q", name, s.BaseURL)
		}
	}
}

func TestRegistry_SelectorsCompile(t *testing.T) {
	for name, s := range Registry() {
		selectors := []string{s.ResultsContainer, s.LinksSelector, s.ImagesContainer, s.ImagesSelector}
		selectors = append(selectors, s.TextSelectors...)
		if s.ConsentSelector != "" {
			selectors = append(selectors, s.ConsentSelector)
		}
		for _, sel := range selectors {
			if _, err := cascadia.Compile(sel); err != nil {
				t.Errorf("%s: selector %q does not compile: %v", name, sel, err)
			}
		}
	}
}

func TestGoogleSearchURL_EncodesQueryAndCount(t *testing.T) {
	u := Registry()["google"].SearchURL("capital of france", 10)

	if !strings.HasPrefix(u, "https://www.google.com/search?") {
		t.Errorf("unexpected URL prefix: %q", u)
	}
	if !strings.Contains(u, "q=capital+of+france") {
		t.Errorf("query not encoded in %q", u)
	}
	if !strings.Contains(u, "num=10") {
		t.Errorf("result count parameter missing in %q", u)
	}
}

func TestGoogleImagesURL_UsesImageSearchMode(t *testing.T) {
	u := Registry()["google"].ImagesURL("eiffel tower")
	if !strings.Contains(u, "tbm=isch") {
		t.Errorf("image mode parameter missing in %q", u)
	}
	if !strings.Contains(u, "q=eiffel+tower") {
		t.Errorf("query not encoded in %q", u)
	}
}

func TestDuckDuckGoURLs(t *testing.T) {
	s := Registry()["duckduckgo"]

	web := s.SearchURL("golang testing", 25)
	if !strings.HasPrefix(web, "https://duckduckgo.com/?") {
		t.Errorf("unexpected URL prefix: %q", web)
	}
	if !strings.Contains(web, "q=golang+testing") {
		t.Errorf("query not encoded in %q", web)
	}

	img := s.ImagesURL("golang gopher")
	if !strings.Contains(img, "iax=images") || !strings.Contains(img, "ia=images") {
		t.Errorf("image mode parameters missing in %q", img)
	}
}

func TestScrollBehaviourPerEngine(t *testing.T) {
	reg := Registry()
	if reg["google"].LoadMoreOnScroll {
		t.Error("google pages by URL parameter and should not scroll")
	}
	if !reg["duckduckgo"].LoadMoreOnScroll {
		t.Error("duckduckgo loads more results on scroll")
	}
}

func TestConsentSelectorPerEngine(t *testing.T) {
	reg := Registry()
	if reg["google"].ConsentSelector == "" {
		t.Error("google strategy needs a consent dialog selector")
	}
	if reg["duckduckgo"].ConsentSelector != "" {
		t.Error("duckduckgo shows no consent dialog")
	}
}
