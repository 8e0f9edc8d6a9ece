// Package export renders a friend's chat history as a printable PDF
// transcript.
package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"

	"soviet/internal/game"
)

const (
	margin    = 40.0
	bodySize  = 10.0
	nameSize  = 8.0
	titleSize = 16.0
	lineH     = 13.0
	bubbleW   = 360.0
	indent    = 110.0
)

// Transcript returns PDF bytes for the friend's full chat history. Incoming
// messages sit on the left under the friend's name, outgoing ones indented
// on the right under the player's.
func Transcript(f *game.Friend, playerName string) ([]byte, error) {
	if f == nil {
		return nil, fmt.Errorf("no friend to export")
	}
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.CellFormat(0, titleSize+6, f.FullName(), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	var last game.Direction
	for i, m := range f.History {
		x := margin
		speaker := f.FullName()
		if m.Direction == game.Outgoing {
			x = margin + indent
			speaker = playerName
		}
		// Label only the first message of each run from the same side.
		if i == 0 || m.Direction != last {
			pdf.SetX(x)
			pdf.SetFont("Helvetica", "B", nameSize)
			pdf.SetTextColor(120, 120, 120)
			pdf.CellFormat(bubbleW, nameSize+2, speaker, "", 1, "L", false, 0, "")
		}
		pdf.SetX(x)
		pdf.SetFont("Helvetica", "", bodySize)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(bubbleW, lineH, m.Text, "", "L", false)
		pdf.Ln(4)
		last = m.Direction
	}
	if f.Ended.Ended {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", nameSize)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, nameSize+2, "— chat ended —", "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render transcript: %w", err)
	}
	return buf.Bytes(), nil
}
