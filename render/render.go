// Package render turns an extraction result into client-facing forms:
// a numbered listing, Markdown of the container, and the container's links.
package render

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/bestseller/fingerprint"
	"github.com/use-agent/bestseller/models"
)

// Output formats accepted in ExtractRequest.OutputFormat.
const (
	FormatNone     = "none"
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// The converter is goroutine-safe.
var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(
			table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
		),
	),
)

// Text renders items as a 1-based numbered listing, one per line.
func Text(items []string) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return b.String()
}

// Markdown converts the container markup to Markdown. Relative links and
// images are resolved against baseURL.
func Markdown(containerHTML, baseURL string) (string, error) {
	md, err := mdConverter.ConvertString(containerHTML, converter.WithDomain(baseURL))
	if err != nil {
		return "", fmt.Errorf("render: markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// Content renders result according to format. FormatNone yields "".
func Content(result *models.ExtractionResult, format, baseURL string) (string, error) {
	switch format {
	case FormatText:
		return Text(result.Items), nil
	case FormatMarkdown:
		if !result.ContainerFound() {
			return "", nil
		}
		return Markdown(*result.ContainerHTML, baseURL)
	default:
		return "", nil
	}
}

// Links returns the absolute http(s) links inside the container markup,
// deduplicated and in document order. It never returns nil.
func Links(containerHTML, baseURL string) []models.Link {
	links := []models.Link{}

	base, err := url.Parse(baseURL)
	if err != nil {
		return links
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(containerHTML))
	if err != nil {
		return links
	}

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}

		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		// Skip javascript:, mailto:, tel: etc.
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		resolved.Fragment = ""

		abs := resolved.String()
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}

		links = append(links, models.Link{
			Href: abs,
			Text: strings.Join(strings.Fields(s.Text()), " "),
		})
	})

	return links
}

// Response assembles the success response for res: links and layout
// fingerprint from the container, plus content in the requested format.
// A rendering failure is recorded as a warning on the response's copy of
// res, not returned.
func Response(res *models.ExtractionResult, finalURL, engineName, format string) models.ExtractResponse {
	resp := models.ExtractResponse{
		Success:    true,
		FinalURL:   finalURL,
		EngineUsed: engineName,
		Result:     res,
		Links:      []models.Link{},
	}
	if res.ContainerFound() {
		resp.Links = Links(*res.ContainerHTML, finalURL)
		resp.LayoutFingerprint = fingerprint.Hex(fingerprint.Layout(*res.ContainerHTML))
	}

	content, err := Content(res, format, finalURL)
	if err != nil {
		resp.Result = withWarning(res, "content rendering failed: "+err.Error())
	}
	resp.Content = content
	return resp
}

// withWarning returns a copy of res with w appended to its warnings.
// res itself is left untouched.
func withWarning(res *models.ExtractionResult, w string) *models.ExtractionResult {
	out := *res
	out.Warnings = append(slices.Clone(res.Warnings), w)
	return &out
}
