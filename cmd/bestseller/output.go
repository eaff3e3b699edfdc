package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/use-agent/bestseller/engine"
	"github.com/use-agent/bestseller/extractor"
	"github.com/use-agent/bestseller/models"
	"github.com/use-agent/bestseller/render"
)

const (
	formatText     = "text"
	formatJSON     = "json"
	formatMarkdown = "markdown"

	previewChars = 500
)

func validFormat(f string) bool {
	return f == formatText || f == formatJSON || f == formatMarkdown
}

func write(w io.Writer, format string, req *models.ExtractRequest, res *engine.Result) error {
	switch format {
	case formatJSON:
		resp := render.Response(res.ExtractionResult, res.FinalURL, res.EngineName, render.FormatText)
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case formatMarkdown:
		md, err := render.Content(res.ExtractionResult, render.FormatMarkdown, res.FinalURL)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, md)
		return err
	default:
		return writeText(w, req, res)
	}
}

// writeText prints the container preview, the numbered items and the
// page preview.
func writeText(w io.Writer, req *models.ExtractRequest, res *engine.Result) error {
	var b strings.Builder

	if res.ContainerFound() {
		fmt.Fprintf(&b, "Container %s (first %d chars):\n%s\n\n", req.ContainerSelector, previewChars, extractor.Preview(*res.ContainerHTML, previewChars))
	} else {
		fmt.Fprintf(&b, "Container %s not found.\n\n", req.ContainerSelector)
	}

	fmt.Fprintf(&b, "Best sellers (%d):\n", len(res.Items))
	b.WriteString(render.Text(res.Items))

	fmt.Fprintf(&b, "\nPage HTML (first %d chars):\n%s\n", previewChars, extractor.Preview(res.PageHTML, previewChars))

	_, err := io.WriteString(w, b.String())
	return err
}
