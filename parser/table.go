package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"michelin-scraper/models"
	"michelin-scraper/normalize"

	"github.com/PuerkitoBio/goquery"
)

var (
	// ErrTableDecode is returned for tables that cannot be turned into a grid
	ErrTableDecode = errors.New("table cannot be decoded")
	// ErrTooFewRows is returned for tables with fewer than MinRows data rows
	ErrTooFewRows = errors.New("table has too few rows")
)

// MinRows is the smallest number of data rows a table must have to be kept
const MinRows = 2

// maxSpan caps rowspan/colspan values taken from the markup
const maxSpan = 1000

type gridCell struct {
	text   string
	header bool
}

type pendingCell struct {
	cell      gridCell
	remaining int
}

// DecodeTable turns a <table> selection into a RawTable. Row and column
// spans are expanded so every row has one value per column. Leading rows
// made only of <th> cells form the header; the last of them names the
// columns. Without a header, columns are named by position.
func DecodeTable(table *goquery.Selection) (raw *models.RawTable, err error) {
	defer func() {
		if r := recover(); r != nil {
			raw, err = nil, fmt.Errorf("%w: %v", ErrTableDecode, r)
		}
	}()

	trs := ownRows(table)
	if trs.Length() == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrTableDecode)
	}

	grid := make([][]gridCell, 0, trs.Length())
	markup := make([]string, 0, trs.Length())
	pending := make(map[int]*pendingCell)

	trs.Each(func(_ int, tr *goquery.Selection) {
		grid = append(grid, expandRow(tr, pending))
		html, _ := goquery.OuterHtml(tr)
		markup = append(markup, html)
	})

	width := 0
	for _, row := range grid {
		width = max(width, len(row))
	}
	if width == 0 {
		return nil, fmt.Errorf("%w: no cells", ErrTableDecode)
	}

	headerRows := 0
	for headerRows < len(grid) && isHeaderRow(grid[headerRows]) {
		headerRows++
	}

	raw = &models.RawTable{Headers: make([]string, width)}
	for i := range raw.Headers {
		switch {
		case headerRows == 0:
			raw.Headers[i] = strconv.Itoa(i)
		case i < len(grid[headerRows-1]):
			raw.Headers[i] = grid[headerRows-1][i].text
		default:
			raw.Headers[i] = fmt.Sprintf("Unnamed: %d", i)
		}
	}

	for r := headerRows; r < len(grid); r++ {
		row := make([]string, width)
		for i, c := range grid[r] {
			row[i] = c.text
		}
		raw.Rows = append(raw.Rows, row)
		raw.Markup = append(raw.Markup, markup[r])
	}

	if len(raw.Rows) < MinRows {
		return nil, fmt.Errorf("%w: %d data rows", ErrTooFewRows, len(raw.Rows))
	}
	return raw, nil
}

// ownRows returns the rows of table, skipping rows of nested tables
func ownRows(table *goquery.Selection) *goquery.Selection {
	return table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(table)
	})
}

// expandRow lays out the cells of tr, filling slots still covered by a
// rowspan from an earlier row. pending is updated for the rows below.
func expandRow(tr *goquery.Selection, pending map[int]*pendingCell) []gridCell {
	var row []gridCell
	col := 0

	takePending := func() bool {
		p, ok := pending[col]
		if !ok {
			return false
		}
		row = append(row, p.cell)
		p.remaining--
		if p.remaining == 0 {
			delete(pending, col)
		}
		col++
		return true
	}

	tr.ChildrenFiltered("th, td").Each(func(_ int, td *goquery.Selection) {
		for takePending() {
		}

		c := gridCell{
			text:   cellText(td),
			header: goquery.NodeName(td) == "th",
		}
		colspan := spanAttr(td, "colspan")
		rowspan := spanAttr(td, "rowspan")
		for i := 0; i < colspan; i++ {
			row = append(row, c)
			if rowspan > 1 {
				pending[col] = &pendingCell{cell: c, remaining: rowspan - 1}
			}
			col++
		}
	})

	// spans reaching past the last cell of this row
	last := -1
	for k := range pending {
		last = max(last, k)
	}
	for col <= last {
		if !takePending() {
			row = append(row, gridCell{})
			col++
		}
	}
	return row
}

func isHeaderRow(row []gridCell) bool {
	if len(row) == 0 {
		return false
	}
	for _, c := range row {
		if !c.header {
			return false
		}
	}
	return true
}

func spanAttr(s *goquery.Selection, name string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s.AttrOr(name, "1")))
	if err != nil || v < 1 {
		return 1
	}
	return min(v, maxSpan)
}

// cellText is the visible text of a cell without footnote markers or
// embedded styles
func cellText(td *goquery.Selection) string {
	c := td.Clone()
	c.Find("sup.reference, style, script").Remove()
	return normalize.Text(c.Text())
}
