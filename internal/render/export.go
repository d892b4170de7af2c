package render

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/go-pdf/fpdf"
)

// PDFMargin is the minimum distance between the image and the page edge, in points.
const PDFMargin = 30.0

// WritePNG writes the chart image.
func WritePNG(w io.Writer, c *Chart) error {
	if c == nil {
		return ErrNoChart
	}
	_, err := w.Write(c.png)
	return err
}

// WritePDF writes a landscape A4 page with the chart scaled to fit and centered.
func WritePDF(w io.Writer, c *Chart) error {
	if c == nil {
		return ErrNoChart
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(c.png))
	if err != nil {
		return fmt.Errorf("could not read chart image: %w", err)
	}

	pdf := fpdf.New("L", "pt", "A4", "")
	pdf.SetTitle(c.Title, true)
	pdf.SetCreator("sheetkit", true)
	pdf.SetMargins(PDFMargin, PDFMargin, PDFMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	availW, availH := pageW-2*PDFMargin, pageH-2*PDFMargin
	scale := math.Min(availW/float64(cfg.Width), availH/float64(cfg.Height))
	imgW, imgH := float64(cfg.Width)*scale, float64(cfg.Height)*scale
	x, y := (pageW-imgW)/2, (pageH-imgH)/2

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("chart", opts, bytes.NewReader(c.png))
	pdf.ImageOptions("chart", x, y, imgW, imgH, false, opts, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("could not write PDF: %w", err)
	}
	return nil
}

// ExportFile writes the chart to path as PNG or PDF.
func ExportFile(path string, c *Chart, asPDF bool) error {
	if c == nil {
		return ErrNoChart
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}

	if asPDF {
		err = WritePDF(f, c)
	} else {
		err = WritePNG(f, c)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}
