package export

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-graphviz"
)

// RenderSVG lays out a DOT document with circo and writes it as SVG.
// circo suits the hub-and-spoke shape of rooms and their servers.
func RenderSVG(ctx context.Context, dot []byte, w io.Writer) error {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.CIRCO)

	g, err := graphviz.ParseBytes(dot)
	if err != nil {
		return fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	if err := gv.Render(ctx, g, graphviz.SVG, w); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}
