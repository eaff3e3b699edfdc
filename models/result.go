package models

// ExtractionResult is the outcome of one extraction against one page.
// It is built once per call and not modified afterwards.
type ExtractionResult struct {
	// Items holds one normalized string per item node, in document order.
	// Never nil: an absent list yields an empty slice.
	Items []string `json:"items"`

	// ContainerHTML is the container's inner markup. Nil means the container
	// never became visible (or its markup could not be read).
	ContainerHTML *string `json:"container_html"`

	// PageHTML is the full serialized document at extraction time.
	PageHTML string `json:"page_html"`

	// Warnings lists the recoverable conditions hit during the call, in order.
	Warnings []string `json:"warnings"`
}

// ContainerFound reports whether the container stage succeeded.
func (r *ExtractionResult) ContainerFound() bool {
	return r != nil && r.ContainerHTML != nil
}
