// Package pdf implements plansync.RetailerTableParser for the regulator's
// register PDF using github.com/ledongthuc/pdf.
package pdf

import (
	"bytes"
	"sort"
	"strings"

	"github.com/fwojciec/plansync"
	"github.com/ledongthuc/pdf"
)

var _ plansync.RetailerTableParser = (*RegisterParser)(nil)

// changeLogMarker starts the trailing pages that carry no retailer rows.
const changeLogMarker = "change log"

// RegisterParser reads retailer rows from the register's table pages.
type RegisterParser struct{}

// NewRegisterParser creates a new RegisterParser.
func NewRegisterParser() *RegisterParser {
	return &RegisterParser{}
}

// ParseRetailers extracts retailers from every page before the change log.
func (p *RegisterParser) ParseRetailers(data []byte) (retailers []plansync.Retailer, err error) {
	// The reader panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			retailers, err = nil, plansync.Errorf(plansync.EMALFORMED, "unreadable register PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, plansync.Errorf(plansync.EMALFORMED, "unreadable register PDF: %v", err)
	}

	pages := make([]pdf.Page, 0, r.NumPage())
	changeLog := 0
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, plansync.Errorf(plansync.EMALFORMED, "page %d: %v", i, err)
		}
		if strings.Contains(strings.ToLower(text), changeLogMarker) {
			changeLog = i
			break
		}
		pages = append(pages, page)
	}
	if changeLog == 0 {
		return nil, plansync.Errorf(plansync.ENOTFOUND, "register PDF has no CHANGE LOG page")
	}

	var table [][]string
	for _, page := range pages {
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, plansync.Errorf(plansync.EMALFORMED, "reading table rows: %v", err)
		}
		for _, row := range rows {
			table = append(table, rowCells(row.Content))
		}
	}
	return ParseTable(table)
}

// ParseTable keeps rows holding exactly a brand, a base URL under
// plansync.CDRBaseURLPrefix and a CDR brand, in that order. Blank cells are
// ignored, as are extra cells past the third. The CDR brand names the
// retailer and must not contain spaces.
func ParseTable(rows [][]string) ([]plansync.Retailer, error) {
	var retailers []plansync.Retailer
	for i, row := range rows {
		var cols []string
		for _, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" || len(cols) == 3 {
				continue
			}
			cols = append(cols, cell)
		}
		if len(cols) != 3 {
			continue
		}

		baseURL, brand := cols[1], cols[2]
		if !hasPrefixFold(baseURL, plansync.CDRBaseURLPrefix) {
			continue
		}
		if strings.ContainsAny(brand, " \t") {
			return nil, plansync.Errorf(plansync.EINTEGRITY, "row %d: CDR brand %q contains spaces", i+1, brand)
		}
		retailers = append(retailers, plansync.Retailer{Brand: brand, BaseURL: baseURL})
	}
	return retailers, nil
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// rowCells joins the glyph runs of one text row into table cells. A gap of
// at least one font size between runs starts a new cell; a smaller gap wider
// than a fifth of the font size is a space.
func rowCells(texts pdf.TextHorizontal) []string {
	sorted := append(pdf.TextHorizontal(nil), texts...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var cells []string
	var cell strings.Builder
	prevEnd := 0.0
	for i, t := range sorted {
		if i > 0 {
			size := t.FontSize
			if size <= 0 {
				size = 1
			}
			switch gap := t.X - prevEnd; {
			case gap >= size:
				cells = append(cells, cell.String())
				cell.Reset()
			case gap > size/5:
				cell.WriteByte(' ')
			}
		}
		cell.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	if cell.Len() > 0 {
		cells = append(cells, cell.String())
	}
	return cells
}
