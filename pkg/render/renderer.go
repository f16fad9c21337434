package render

import (
	"context"

	"github.com/goliatone/go-courseform/pkg/view"
)

// Renderer converts an editing page into a byte representation (HTML, plain
// text, and so on).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, page view.Page, options RenderOptions) ([]byte, error)
}
