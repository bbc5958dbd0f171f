package parser

import (
	"fmt"
	"strings"

	"michelin-scraper/infer"
	"michelin-scraper/models"
	"michelin-scraper/normalize"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Canonical fields resolved from table columns
const (
	FieldName    = "restaurant_name"
	FieldCity    = "city"
	FieldCuisine = "cuisine_type"
	FieldYear    = "year_first_starred"
)

// ColumnCandidates lists, per field, the normalized header names that may
// hold it. The first name present in a table wins.
var ColumnCandidates = map[string][]string{
	FieldName:    {"restaurant", "name"},
	FieldCity:    {"city", "town", "location"},
	FieldCuisine: {"cuisine", "style"},
	FieldYear:    {"year", "since", "first_awarded", "notes"},
}

// Parser extracts restaurant records from list pages
type Parser struct {
	tableClass string
	logger     *zap.Logger
}

// NewParser creates a Parser reading tables with the given class
func NewParser(tableClass string, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		tableClass: tableClass,
		logger:     logger,
	}
}

// Extract returns one record per data row of every usable table on the
// page. Tables that fail to decode are skipped. An error is returned only
// when the page itself cannot be parsed.
func (p *Parser) Extract(pageURL, pageHTML string) ([]models.Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var records []models.Record
	doc.Find("table." + p.tableClass).Each(func(i int, s *goquery.Selection) {
		raw, err := DecodeTable(s)
		if err != nil {
			p.logger.Debug("skipping table",
				zap.String("url", pageURL),
				zap.Int("table", i),
				zap.Error(err))
			return
		}
		records = append(records, Normalize(pageURL, raw)...)
	})

	return records, nil
}

// Normalize maps a decoded table onto the canonical schema. Fields whose
// column is missing are left unknown.
func Normalize(pageURL string, t *models.RawTable) []models.Record {
	cols := columnIndex(t.Headers)

	nameCol := resolve(cols, FieldName)
	if nameCol < 0 || columnEmpty(t, nameCol) {
		nameCol = 0
	}
	cityCol := resolve(cols, FieldCity)
	cuisineCol := resolve(cols, FieldCuisine)
	yearCol := resolve(cols, FieldYear)

	records := make([]models.Record, 0, len(t.Rows))
	for i, row := range t.Rows {
		rec := models.Record{
			SourceURL:      pageURL,
			RestaurantName: cellAt(row, nameCol),
			City:           models.StringPtr(cellAt(row, cityCol)),
			CuisineType:    models.StringPtr(cellAt(row, cuisineCol)),
			Stars:          infer.Stars(markupAt(t, i)),
		}

		if yearCol >= 0 {
			rec.YearFirstStarred = infer.Year(models.StringPtr(cellAt(row, yearCol)))
		} else {
			joined := strings.Join(row, " ")
			rec.YearFirstStarred = infer.Year(&joined)
		}

		records = append(records, rec)
	}
	return records
}

// columnIndex maps normalized headers to their first column. Repeated
// headers get a numeric suffix, as "stars", "stars_1".
func columnIndex(headers []string) map[string]int {
	cols := make(map[string]int, len(headers))
	for i, h := range headers {
		key := normalize.Header(h)
		if _, dup := cols[key]; dup {
			for n := 1; ; n++ {
				k := fmt.Sprintf("%s_%d", key, n)
				if _, taken := cols[k]; !taken {
					key = k
					break
				}
			}
		}
		cols[key] = i
	}
	return cols
}

func resolve(cols map[string]int, field string) int {
	for _, name := range ColumnCandidates[field] {
		if i, ok := cols[name]; ok {
			return i
		}
	}
	return -1
}

func columnEmpty(t *models.RawTable, col int) bool {
	for _, row := range t.Rows {
		if cellAt(row, col) != "" {
			return false
		}
	}
	return true
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// markupAt returns the markup of data row i, or "" when there are fewer
// markup rows than data rows
func markupAt(t *models.RawTable, i int) string {
	if i >= len(t.Markup) {
		return ""
	}
	return t.Markup[i]
}
