package main

import (
	"fmt"
	"image/color"
	"os"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

var csvHeaders = []string{"Name", "Question (Q)", "Keywords (K)", "Summary (S)", "Model answer"}

// exportFilename is qnks_YYYYMMDD_HHMM with the given extension.
func exportFilename(now time.Time, ext string) string {
	return fmt.Sprintf("qnks_%s.%s", now.Format("20060102_1504"), ext)
}

// quoteCSV always quotes, so empty fields still read as "" in the sheet.
func quoteCSV(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// writeCSV writes the worksheet as a one-row CSV with a UTF-8 BOM so
// spreadsheet apps pick the right encoding.
func writeCSV(filename, name string, sess *Session) error {
	question := strings.TrimSpace(sess.Question())
	summary := strings.TrimSpace(sess.Summary())
	if question == "" && summary == "" {
		return validationf("Nothing to export yet")
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.WriteString("\ufeff" + strings.Join(csvHeaders, ",") + "\n"); err != nil {
		return err
	}

	row := []string{
		name,
		question,
		strings.Join(sess.Keywords(), keywordSeparator),
		summary,
		sess.Answer(),
	}
	quoted := make([]string, len(row))
	for i, f := range row {
		quoted[i] = quoteCSV(f)
	}
	if _, err := file.WriteString(strings.Join(quoted, ",") + "\n"); err != nil {
		return err
	}
	return file.Close()
}

// Character cell size in the PNG, in pixels.
const (
	pngCharWidth  = 8.0
	pngCharHeight = 16.0
	pngPadding    = 2
)

var pngNoteColors = map[Color]color.RGBA{
	ColorPink:   {R: 0xff, G: 0xd1, B: 0xdc, A: 0xff},
	ColorYellow: {R: 0xff, G: 0xf5, B: 0xb8, A: 0xff},
	ColorBlue:   {R: 0xc8, G: 0xe4, B: 0xff, A: 0xff},
	ColorGreen:  {R: 0xc9, G: 0xf2, B: 0xc7, A: 0xff},
	ColorPurple: {R: 0xe2, G: 0xd4, B: 0xff, A: 0xff},
}

var (
	pngQuestionFill = color.RGBA{R: 0x7c, G: 0x5c, B: 0xd6, A: 0xff}
	pngLineColor    = color.RGBA{R: 0xe2, G: 0xb3, B: 0x40, A: 0xff}
)

// ExportToPNG draws the scene cropped to its notes.
func ExportToPNG(filename string, scene Scene) error {
	if len(scene.Notes) == 0 {
		return validationf("Nothing to export yet")
	}

	minX, minY := scene.Notes[0].Rect.X, scene.Notes[0].Rect.Y
	maxX, maxY := minX, minY
	for _, v := range scene.Notes {
		if v.Rect.X < minX {
			minX = v.Rect.X
		}
		if v.Rect.Y < minY {
			minY = v.Rect.Y
		}
		if v.Rect.X+v.Rect.W > maxX {
			maxX = v.Rect.X + v.Rect.W
		}
		if v.Rect.Y+v.Rect.H > maxY {
			maxY = v.Rect.Y + v.Rect.H
		}
	}
	minX -= pngPadding
	minY -= pngPadding
	maxX += pngPadding
	maxY += pngPadding

	imageWidth := int((maxX - minX) * pngCharWidth)
	imageHeight := int((maxY - minY) * pngCharHeight)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(color.White)
	dc.Clear()

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %v", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    12.0,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)

	px := func(x float64) float64 { return (x - minX) * pngCharWidth }
	py := func(y float64) float64 { return (y - minY) * pngCharHeight }

	// Lines first so they sit behind the notes.
	dc.SetLineWidth(2.5)
	dc.SetColor(pngLineColor)
	for _, l := range scene.Lines {
		dc.DrawLine(px(l.A.X), py(l.A.Y), px(l.B.X), py(l.B.Y))
		dc.Stroke()
	}

	for _, v := range scene.Notes {
		drawNotePNG(dc, v, px(v.Rect.X), py(v.Rect.Y))
	}

	return dc.SavePNG(filename)
}

func drawNotePNG(dc *gg.Context, v NoteView, x, y float64) {
	w := v.Rect.W * pngCharWidth
	h := v.Rect.H * pngCharHeight

	fill, ok := pngNoteColors[v.Color]
	if !ok {
		fill = pngNoteColors[ColorYellow]
	}
	text := color.Color(color.Black)
	if v.Kind == KindQuestion {
		fill = pngQuestionFill
		text = color.White
	}

	dc.DrawRoundedRectangle(x, y, w, h, 4)
	dc.SetColor(fill)
	dc.FillPreserve()
	dc.SetColor(color.RGBA{A: 0x60})
	dc.SetLineWidth(1.0)
	dc.Stroke()

	dc.SetColor(text)
	row := y + pngCharHeight
	if v.Kind == KindQuestion {
		dc.DrawString("Q", x+2*pngCharWidth, row+pngCharHeight*0.75)
		row += pngCharHeight
	}
	for i, line := range v.Lines {
		dc.DrawString(line, x+2*pngCharWidth, row+float64(i)*pngCharHeight+pngCharHeight*0.75)
	}
}
