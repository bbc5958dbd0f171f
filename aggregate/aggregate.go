// Package aggregate merges per-page records into the final dataset.
package aggregate

import (
	"errors"

	"michelin-scraper/models"
)

// ErrNoData is returned when a crawl produced no records at all
var ErrNoData = errors.New("no data")

// key identifies duplicate records. Records that differ only in city or
// cuisine collapse into one.
type key struct {
	name      string
	sourceURL string
	stars     int // 0 when unknown
}

func keyOf(r models.Record) key {
	k := key{name: r.RestaurantName, sourceURL: r.SourceURL}
	if r.Stars != nil {
		k.stars = *r.Stars
	}
	return k
}

// Aggregate flattens parts in order and drops every record whose
// (restaurant name, source URL, stars) was already seen. ErrNoData is
// returned when parts hold no records.
func Aggregate(parts [][]models.Record) (models.Dataset, error) {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	if total == 0 {
		return models.Dataset{}, ErrNoData
	}

	seen := make(map[key]struct{}, total)
	records := make([]models.Record, 0, total)
	for _, part := range parts {
		for _, r := range part {
			k := keyOf(r)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			records = append(records, r)
		}
	}

	return models.Dataset{Records: records}, nil
}
