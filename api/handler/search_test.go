package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/seeker/models"
)

type stubSearcher struct {
	result *models.SearchResult
	err    error
	calls  int
	last   models.SearchRequest
}

func (s *stubSearcher) Search(_ context.Context, req models.SearchRequest) (*models.SearchResult, error) {
	s.calls++
	s.last = req
	return s.result, s.err
}

func searchRouter(s Searcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/search", Search(s))
	return r
}

func postSearch(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSearch_Success(t *testing.T) {
	stub := &stubSearcher{result: &models.SearchResult{
		Results: "Paris\nParis is the capital and largest city of France.",
		Links:   []string{"https://en.wikipedia.org/wiki/Paris"},
		Images:  []string{},
	}}
	w := postSearch(t, searchRouter(stub), `{"engine":"google","query":"capital of france"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res models.SearchResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if !strings.HasPrefix(res.Results, "Paris") {
		t.Errorf("unexpected results text: %q", res.Results)
	}
	if len(res.Links) != 1 || res.Links[0] != "https://en.wikipedia.org/wiki/Paris" {
		t.Errorf("unexpected links: %v", res.Links)
	}
	if stub.calls != 1 {
		t.Errorf("expected one search call, got %d", stub.calls)
	}
}

func TestSearch_InvalidEngineBody(t *testing.T) {
	stub := &stubSearcher{err: models.NewSearchError(models.ErrCodeInvalidEngine, "resolve", "unsupported engine altavista", nil)}
	w := postSearch(t, searchRouter(stub), `{"engine":"altavista","query":"anything"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if w.Body.String() != "Invalid engine" {
		t.Errorf("expected body %q, got %q", "Invalid engine", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected plain text content type, got %q", ct)
	}
}

func TestSearch_InternalFailureBody(t *testing.T) {
	stub := &stubSearcher{err: models.NewSearchError(
		models.ErrCodeWaitTimeout, "wait_results", "results container never appeared", context.DeadlineExceeded,
	)}
	w := postSearch(t, searchRouter(stub), `{"engine":"google","query":"anything"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if w.Body.String() != "Search failed: results container never appeared" {
		t.Errorf("unexpected body: %q", w.Body.String())
	}
}

func TestSearch_UncategorizedErrorBecomesInternal(t *testing.T) {
	stub := &stubSearcher{err: context.Canceled}
	w := postSearch(t, searchRouter(stub), `{"engine":"google","query":"anything"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Body.String(), "Search failed: ") {
		t.Errorf("unexpected body: %q", w.Body.String())
	}
}

func TestSearch_MalformedJSONRejectedBeforeSearch(t *testing.T) {
	stub := &stubSearcher{result: &models.SearchResult{}}
	w := postSearch(t, searchRouter(stub), `{"engine":`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if stub.calls != 0 {
		t.Errorf("malformed request must not reach the searcher, got %d calls", stub.calls)
	}
}

func TestSearch_MissingRequiredFields(t *testing.T) {
	stub := &stubSearcher{result: &models.SearchResult{}}

	for _, body := range []string{`{"query":"x"}`, `{"engine":"google"}`, `{}`} {
		w := postSearch(t, searchRouter(stub), body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, w.Code)
		}
	}
	if stub.calls != 0 {
		t.Errorf("incomplete requests must not reach the searcher, got %d calls", stub.calls)
	}
}

func TestSearch_DefaultsAppliedBeforeSearch(t *testing.T) {
	stub := &stubSearcher{result: &models.SearchResult{Links: []string{}, Images: []string{}}}
	w := postSearch(t, searchRouter(stub), `{"engine":"google","query":"x"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if stub.last.MaxLinks != 10 {
		t.Errorf("expected default max_links 10, got %d", stub.last.MaxLinks)
	}
	if stub.last.IncludeImages {
		t.Error("include_images should default to false")
	}
}

func TestSearch_EmptyCollectionsMarshalAsArrays(t *testing.T) {
	stub := &stubSearcher{result: &models.SearchResult{Results: "", Links: []string{}, Images: []string{}}}
	w := postSearch(t, searchRouter(stub), `{"engine":"google","query":"x"}`)

	body := w.Body.String()
	if !strings.Contains(body, `"links":[]`) {
		t.Errorf("links should marshal as an empty array, body: %s", body)
	}
	if !strings.Contains(body, `"images":[]`) {
		t.Errorf("images should marshal as an empty array, body: %s", body)
	}
}

func TestProbe_NoContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/probe", Probe())

	req := httptest.NewRequest(http.MethodPost, "/probe", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}
}

type stubStats struct{ active int }

func (s stubStats) ActiveSearches() int { return s.active }

func TestHealth_ReportsActiveSearches(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", Health(stubStats{active: 3}, time.Now().Add(-2*time.Minute)))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var res models.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if res.Status != "healthy" {
		t.Errorf("expected healthy status, got %q", res.Status)
	}
	if res.ActiveSearches != 3 {
		t.Errorf("expected 3 active searches, got %d", res.ActiveSearches)
	}
	if res.Uptime == "" {
		t.Error("uptime should be populated")
	}
}
