package aggregate

import (
	"errors"
	"testing"

	"michelin-scraper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(name, url string, stars *int, city string) models.Record {
	return models.Record{
		SourceURL:      url,
		RestaurantName: name,
		City:           models.StringPtr(city),
		Stars:          stars,
	}
}

func TestAggregate(t *testing.T) {
	const (
		paris = "https://en.wikipedia.org/wiki/Paris_list"
		lyon  = "https://en.wikipedia.org/wiki/Lyon_list"
	)
	one, two := models.IntPtr(1), models.IntPtr(2)

	parts := [][]models.Record{
		{
			rec("Le Cinq", paris, one, "Paris"),
			rec("Le Cinq", paris, one, "Paris 8e"), // duplicate key, different city
			rec("Le Cinq", paris, two, "Paris"),    // different stars
		},
		{},
		{
			rec("Le Cinq", lyon, one, "Paris"), // different page
			rec("Unknown stars", lyon, nil, ""),
			rec("Unknown stars", lyon, nil, "Lyon"),
		},
	}

	ds, err := Aggregate(parts)
	require.NoError(t, err)
	require.Equal(t, 4, ds.Len())

	assert.Equal(t, "Paris", *ds.Records[0].City, "first occurrence is kept")
	assert.Equal(t, two, ds.Records[1].Stars)
	assert.Equal(t, lyon, ds.Records[2].SourceURL)
	assert.Equal(t, "Unknown stars", ds.Records[3].RestaurantName)
	assert.Nil(t, ds.Records[3].City)
}

func TestAggregateEmpty(t *testing.T) {
	tests := []struct {
		name  string
		parts [][]models.Record
	}{
		{"nil", nil},
		{"empty parts", [][]models.Record{{}, nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Aggregate(tt.parts)
			assert.True(t, errors.Is(err, ErrNoData))
			assert.Zero(t, ds.Len())
		})
	}
}
