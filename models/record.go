package models

// Record is one restaurant row normalized into the canonical schema.
// Nil optional fields mean the value could not be extracted.
type Record struct {
	SourceURL        string
	RestaurantName   string
	City             *string
	CuisineType      *string
	YearFirstStarred *int
	Stars            *int
}

// RawTable is a decoded HTML table before column resolution
type RawTable struct {
	Headers []string
	Rows    [][]string
	Markup  []string // outer HTML of each data row, aligned with Rows
}

// Dataset is the deduplicated output handed to the sinks
type Dataset struct {
	Records []Record
}

// Columns is the fixed column order every sink must preserve
var Columns = []string{
	"source_url",
	"restaurant_name",
	"city",
	"cuisine_type",
	"year_first_starred",
	"stars",
}

// Len returns the number of records
func (d Dataset) Len() int {
	return len(d.Records)
}

// Row returns the i-th record as cell values in Columns order.
// Unknown values are returned as nil.
func (d Dataset) Row(i int) []interface{} {
	r := d.Records[i]
	return []interface{}{
		r.SourceURL,
		r.RestaurantName,
		stringOrNil(r.City),
		stringOrNil(r.CuisineType),
		intOrNil(r.YearFirstStarred),
		intOrNil(r.Stars),
	}
}

func stringOrNil(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func intOrNil(n *int) interface{} {
	if n == nil {
		return nil
	}
	return *n
}

// StringPtr returns a pointer to s, or nil when s is empty
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// IntPtr returns a pointer to n
func IntPtr(n int) *int {
	return &n
}
