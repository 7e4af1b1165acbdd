// Package export renders an album as a paginated landscape PDF: a themed
// cover page followed by two photos per page with their captions, locations
// and landmarks.
package export

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/afriel/keepsake/internal/picture"
	"github.com/afriel/keepsake/internal/storage"
	"github.com/afriel/keepsake/internal/theme"
)

// A4 landscape, millimetres.
const (
	pageWidth  = 297.0
	pageHeight = 210.0
	margin     = 12.0
	slotWidth  = (pageWidth - 3*margin) / 2
	imageMaxH  = 120.0
)

// Filename derives the download name for an album export: the title with
// every non-alphanumeric character stripped, lower-cased, plus the pdf
// extension.
func Filename(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "album.pdf"
	}
	return b.String() + ".pdf"
}

// Render produces the PDF document for the album. Photos must carry their
// image payloads; they are embedded filter-adjusted and size-capped. Photos
// whose payload cannot be re-encoded as JPEG are rendered with text only.
func Render(album storage.Album, photos []storage.Photo) ([]byte, error) {
	style := album.Theme.Style()

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Cover page.
	pdf.AddPage()
	pdf.SetTextColor(style.TitleColor.R, style.TitleColor.G, style.TitleColor.B)
	pdf.SetFont(style.FontFamily, "B", 36)
	pdf.SetY(pageHeight/2 - 24)
	pdf.CellFormat(0, 18, tr(album.Title), "", 1, "C", false, 0, "")

	pdf.SetTextColor(style.BodyColor.R, style.BodyColor.G, style.BodyColor.B)
	pdf.SetFont(style.FontFamily, "", 14)
	pdf.CellFormat(0, 10, tr(album.CreatedAt.Format("January 2, 2006")), "", 1, "C", false, 0, "")

	// Two photos per page.
	for i := 0; i < len(photos); i += 2 {
		pdf.AddPage()
		for slot := 0; slot < 2 && i+slot < len(photos); slot++ {
			renderPhoto(pdf, tr, style, photos[i+slot], slot)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("export: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type translator func(string) string

func renderPhoto(pdf *fpdf.Fpdf, tr translator, style theme.Style, photo storage.Photo, slot int) {
	x := margin + float64(slot)*(slotWidth+margin)
	y := margin

	data := picture.NormalizeFiltered(photo.Data, photo.Filter, picture.ExportMaxDim, picture.ExportQuality)

	if cfg, err := jpeg.DecodeConfig(bytes.NewReader(data)); err == nil && cfg.Width > 0 && cfg.Height > 0 {
		w := slotWidth
		h := w * float64(cfg.Height) / float64(cfg.Width)
		if h > imageMaxH {
			h = imageMaxH
			w = h * float64(cfg.Width) / float64(cfg.Height)
		}

		name := fmt.Sprintf("photo-%d", photo.ID)
		opts := fpdf.ImageOptions{ImageType: "JPG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		pdf.ImageOptions(name, x+(slotWidth-w)/2, y, w, h, false, opts, 0, "")
		y += imageMaxH + 6
	} else {
		y += 10
	}

	pdf.SetXY(x, y)

	if photo.Description != "" {
		pdf.SetTextColor(style.BodyColor.R, style.BodyColor.G, style.BodyColor.B)
		pdf.SetFont(style.FontFamily, "", 11)
		pdf.MultiCell(slotWidth, 5.5, tr(photo.Description), "", "L", false)
	}

	if photo.Location != "" {
		pdf.SetX(x)
		pdf.SetTextColor(style.AccentColor.R, style.AccentColor.G, style.AccentColor.B)
		pdf.SetFont(style.FontFamily, "I", 10)
		pdf.MultiCell(slotWidth, 5, tr(photo.Location), "", "L", false)
	}

	if len(photo.Landmarks) > 0 {
		pdf.SetTextColor(style.BodyColor.R, style.BodyColor.G, style.BodyColor.B)
		pdf.SetFont(style.FontFamily, "", 8.5)
		for _, lm := range photo.Landmarks {
			pdf.SetX(x)
			line := fmt.Sprintf("%s: %s (%s)", lm.Name, lm.Description, lm.URL)
			pdf.MultiCell(slotWidth, 4.5, tr(line), "", "L", false)
		}
	}
}
