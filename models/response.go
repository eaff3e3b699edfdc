package models

// ExtractResponse is the response for POST /api/v1/extract.
type ExtractResponse struct {
	// Success is false only when a fatal error stopped the extraction.
	Success bool `json:"success"`

	// FinalURL is the page the result was taken from.
	FinalURL string `json:"final_url"`

	// EngineUsed is the fetch engine that produced the result
	// ("http", "rod").
	EngineUsed string `json:"engine_used,omitempty"`

	// Result carries items, container markup, page markup and warnings.
	Result *ExtractionResult `json:"result,omitempty"`

	// Content is the rendering requested through output_format.
	Content string `json:"content,omitempty"`

	// Links are the absolute product links found inside the container.
	Links []Link `json:"links"`

	// LayoutFingerprint is a hex SimHash of the container's tag structure.
	// Two runs with a small Hamming distance saw the same layout.
	LayoutFingerprint string `json:"layout_fingerprint,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// Link represents a hyperlink extracted from the container.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// ExtractionMs covers navigation, waits and capture.
	ExtractionMs int64 `json:"extraction_ms"`

	// RenderMs covers links, fingerprint and content rendering.
	RenderMs int64 `json:"render_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool_stats"`
	Version   string    `json:"version"`
}

// PoolStats reports the state of the browser page pool.
type PoolStats struct {
	MaxPages    int  `json:"max_pages"`
	ActivePages int  `json:"active_pages"`
	Remote      bool `json:"remote"`
}
