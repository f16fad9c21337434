package vanilla

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy

	imagePolicyOnce sync.Once
	imagePolicy     *bluemonday.Policy

	iconPolicyOnce sync.Once
	iconPolicy     *bluemonday.Policy
)

// previewText strips all markup from free text shown outside inputs (block
// summaries, table captions). The result is HTML-safe.
func previewText(raw string) string {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(textPolicy.Sanitize(raw))
}

// previewImage returns an <img> tag for url, or "" when the URL is not an
// http(s) or relative reference.
func previewImage(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	imagePolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowStandardURLs()
		policy.AllowRelativeURLs(true)
		policy.AllowImages()
		policy.AllowAttrs("loading").Matching(bluemonday.SpaceSeparatedTokens).OnElements("img")
		imagePolicy = policy
	})
	markup := `<img src="` + html.EscapeString(url) + `" alt="" loading="lazy">`
	cleaned := strings.TrimSpace(imagePolicy.Sanitize(markup))
	if !strings.Contains(cleaned, "src=") {
		return ""
	}
	return cleaned
}

// previewIcon accepts inline SVG markup for feature icons. Anything else is
// treated as an icon name and rendered by the template as a class.
func previewIcon(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "<svg") {
		return ""
	}
	iconPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("svg", "g", "path", "circle", "rect", "line", "polyline", "polygon", "title")
		policy.AllowAttrs(
			"xmlns", "viewBox", "width", "height", "fill", "stroke",
			"stroke-width", "stroke-linecap", "stroke-linejoin", "aria-hidden", "role",
		).OnElements("svg")
		for _, el := range []string{"path", "circle", "rect", "line", "polyline", "polygon"} {
			policy.AllowAttrs(
				"d", "cx", "cy", "r", "x", "y", "x1", "y1", "x2", "y2",
				"points", "rx", "ry", "fill", "stroke", "stroke-width",
			).OnElements(el)
		}
		iconPolicy = policy
	})
	return strings.TrimSpace(iconPolicy.Sanitize(trimmed))
}
