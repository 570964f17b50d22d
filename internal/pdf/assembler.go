// Package pdf renders contract prose into a paginated US Letter document and
// stamps the signature page the e-signature provider binds its fields to.
package pdf

import (
	"bytes"
	"strings"

	"github.com/go-pdf/fpdf"

	"deedflow/internal/common/errors"
	"deedflow/internal/contract"
)

// FieldNamer produces the provider-specific, machine-locatable tag stamped
// over each signature line. Keeping it behind an interface keeps this package
// free of any signing-provider API shape.
type FieldNamer interface {
	FieldTag(role contract.Role) string
}

const (
	pageMargin = 60.0
	bodySize   = 10.0
	titleSize  = 14.0
	headingSz  = 12.0
)

type Assembler struct {
	namer FieldNamer
}

func NewAssembler(namer FieldNamer) *Assembler {
	return &Assembler{namer: namer}
}

// Render produces the complete document buffer: title block, body with
// heading/bold/bullet treatment, then exactly one signature page. Any
// rendering error aborts the whole assembly; there is no partial output.
func (a *Assembler) Render(text, propertyAddress string) ([]byte, error) {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.AddPage()

	a.renderTitle(doc, propertyAddress)
	a.renderBody(doc, text)
	a.renderSignaturePage(doc)

	if err := doc.Error(); err != nil {
		return nil, errors.NewPDFRenderFailed(err)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, errors.NewPDFRenderFailed(err)
	}
	return buf.Bytes(), nil
}

func (a *Assembler) renderTitle(doc *fpdf.Fpdf, propertyAddress string) {
	doc.SetFont("Helvetica", "B", titleSize)
	doc.SetTextColor(26, 26, 26)
	doc.CellFormat(0, titleSize+4, "RESIDENTIAL PURCHASE AGREEMENT", "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "", bodySize)
	doc.SetTextColor(102, 102, 102)
	doc.CellFormat(0, bodySize+2, "Property: "+propertyAddress, "", 1, "C", false, 0, "")
	doc.Ln(18)
}

func (a *Assembler) renderBody(doc *fpdf.Fpdf, text string) {
	doc.SetTextColor(26, 26, 26)
	doc.SetFont("Helvetica", "", bodySize)

	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "## "):
			doc.Ln(6)
			doc.SetFont("Helvetica", "B", bodySize)
			doc.MultiCell(0, bodySize+3, strings.TrimPrefix(line, "## "), "", "L", false)
			doc.SetFont("Helvetica", "", bodySize)
			doc.Ln(2)
		case strings.HasPrefix(line, "# "):
			doc.Ln(6)
			doc.SetFont("Helvetica", "B", headingSz)
			doc.MultiCell(0, headingSz+3, strings.TrimPrefix(line, "# "), "", "L", false)
			doc.SetFont("Helvetica", "", bodySize)
			doc.Ln(2)
		case strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**") && len(line) > 4:
			doc.SetFont("Helvetica", "B", bodySize)
			doc.MultiCell(0, bodySize+3, strings.ReplaceAll(line, "**", ""), "", "L", false)
			doc.SetFont("Helvetica", "", bodySize)
		case strings.TrimSpace(line) == "" || strings.TrimSpace(line) == "---":
			doc.Ln(6)
		default:
			doc.MultiCell(0, bodySize+3, cleanBodyLine(line), "", "L", false)
		}
	}
}

// cleanBodyLine strips inline bold markers and swaps a leading list marker
// for a bullet glyph.
func cleanBodyLine(line string) string {
	clean := strings.ReplaceAll(line, "**", "")
	if strings.HasPrefix(clean, "- ") || strings.HasPrefix(clean, "* ") {
		clean = "• " + clean[2:]
	}
	return clean
}

// signatureBlock is the computed layout for one party on the signature page.
type signatureBlock struct {
	Role     contract.Role
	Label    string
	FieldTag string
	// Signature line geometry (left column) and date line (right column),
	// in points from the page origin.
	LineY       float64
	SigLineX    float64
	SigLineEnd  float64
	DateLineX   float64
	DateLineEnd float64
}

const (
	sigBlockTop     = 180.0
	sigBlockSpacing = 110.0
	sigLineWidth    = 240.0
	dateLineWidth   = 120.0
)

// signatureBlocks lays out Broker, Buyer, Seller down the page in fixed chain
// order. Pure function of the namer, so the geometry is testable without
// producing a document.
func (a *Assembler) signatureBlocks(pageWidth float64) []signatureBlock {
	blocks := make([]signatureBlock, 0, 3)
	y := sigBlockTop
	for _, role := range contract.Roles() {
		blocks = append(blocks, signatureBlock{
			Role:        role,
			Label:       role.String(),
			FieldTag:    a.namer.FieldTag(role),
			LineY:       y,
			SigLineX:    pageMargin,
			SigLineEnd:  pageMargin + sigLineWidth,
			DateLineX:   pageWidth - pageMargin - dateLineWidth,
			DateLineEnd: pageWidth - pageMargin,
		})
		y += sigBlockSpacing
	}
	return blocks
}

func (a *Assembler) renderSignaturePage(doc *fpdf.Fpdf) {
	doc.AddPage()
	pageWidth, _ := doc.GetPageSize()

	doc.SetFont("Helvetica", "B", titleSize)
	doc.SetTextColor(26, 26, 26)
	doc.CellFormat(0, titleSize+4, "SIGNATURES", "", 1, "C", false, 0, "")

	for _, block := range a.signatureBlocks(pageWidth) {
		doc.SetFont("Helvetica", "B", bodySize)
		doc.Text(block.SigLineX, block.LineY-28, block.Label+":")

		doc.SetDrawColor(26, 26, 26)
		doc.Line(block.SigLineX, block.LineY, block.SigLineEnd, block.LineY)
		doc.Line(block.DateLineX, block.LineY, block.DateLineEnd, block.LineY)

		doc.SetFont("Helvetica", "", 8)
		doc.Text(block.SigLineX, block.LineY+12, "Signature")
		doc.Text(block.DateLineX, block.LineY+12, "Date")

		// Field tag sits on the signature line so the provider can anchor the
		// party's field there. White text keeps it out of the printed page.
		doc.SetTextColor(255, 255, 255)
		doc.SetFont("Helvetica", "", 7)
		doc.Text(block.SigLineX+4, block.LineY-4, block.FieldTag)
		doc.SetTextColor(26, 26, 26)
	}
}
