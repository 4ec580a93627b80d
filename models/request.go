package models

// defaultMaxLinks is applied when the caller omits max_links.
const defaultMaxLinks = 10

// SearchRequest is the payload for POST /search.
type SearchRequest struct {
	// Engine selects the search-engine protocol. Required.
	// Known engines: "google", "duckduckgo".
	Engine string `json:"engine" binding:"required"`

	// Query is the search phrase. Required.
	Query string `json:"query" binding:"required"`

	// IncludeImages triggers a second navigation to the engine's
	// image-search view for the same query.
	// Default: false.
	IncludeImages bool `json:"include_images"`

	// MaxLinks is the requested result-link count. Best-effort: the page
	// may never render enough links.
	// Default: 10. Max: 50.
	MaxLinks int `json:"max_links,omitempty" binding:"omitempty,min=1,max=50"`
}

// Defaults applies default values to unset fields.
func (r *SearchRequest) Defaults() {
	if r.MaxLinks == 0 {
		r.MaxLinks = defaultMaxLinks
	}
}
