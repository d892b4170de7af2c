package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/klytics/sheetkit/internal/controller"
)

// Replotter redraws one chart and re-exports it whenever its workbook changes.
type Replotter struct {
	Ctrl    *controller.Controller
	Request controller.PlotRequest
	Output  string // .png or .pdf; empty only redraws
}

// Handle is a Handler. Cached bounds are dropped first since the file changed
// underneath them.
func (r *Replotter) Handle(ctx context.Context, path string) error {
	r.Ctrl.Invalidate()

	_, err := r.Ctrl.Dispatch(ctx, controller.ActionPlot, controller.Request{
		Col:  r.Request.Col,
		Kind: r.Request.Kind,
		Mode: r.Request.Mode,
	})
	if err != nil {
		return fmt.Errorf("replot %s: %w", path, err)
	}
	if r.Output == "" {
		return nil
	}

	action := controller.ActionPNG
	if strings.EqualFold(filepath.Ext(r.Output), ".pdf") {
		action = controller.ActionPDF
	}
	if _, err := r.Ctrl.Dispatch(ctx, action, controller.Request{Path: r.Output}); err != nil {
		return fmt.Errorf("export %s: %w", r.Output, err)
	}
	return nil
}
