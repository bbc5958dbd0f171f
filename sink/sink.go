// Package sink defines where the final dataset is written.
package sink

import (
	"context"
	"errors"
	"fmt"

	"michelin-scraper/models"
)

// Sink persists a dataset under a sheet or table name. Columns must be
// written in models.Columns order.
type Sink interface {
	Write(ctx context.Context, sheetName string, ds models.Dataset) error
}

// Multi writes to every sink in order. A failing sink does not stop the
// others; all errors are joined.
type Multi []Sink

// Write implements the Sink interface
func (m Multi) Write(ctx context.Context, sheetName string, ds models.Dataset) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, sheetName, ds); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", s, err))
		}
	}
	return errors.Join(errs...)
}
