package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"michelin-scraper/aggregate"
	"michelin-scraper/config"
	"michelin-scraper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wiki = "https://en.wikipedia.org"

type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	visited []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string, timeout time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visited = append(f.visited, url)
	html, ok := f.pages[url]
	if !ok {
		return "", errors.New("connection refused")
	}
	return html, nil
}

func testConfig(seeds ...string) *config.Config {
	cfg := config.GetDefaultConfig()
	cfg.Crawl.Seeds = seeds
	cfg.Fetch.Delay = 0
	return cfg
}

const seedPage = `<html><body>
<a href="/wiki/List_of_Michelin_starred_restaurants_in_France">France</a>
<a href="/wiki/List_of_Michelin_starred_restaurants_in_Spain">Spain</a>
<a href="/wiki/List_of_Michelin_starred_restaurants_in_Japan">Japan</a>
</body></html>`

// The restaurant row appears twice: tables need two data rows and the
// copies collapse into one record.
const francePage = `<html><body>
<table class="wikitable">
<tr><th>Restaurant</th><th>Stars</th><th>Notes</th></tr>
<tr><td>Le Cinq</td><td><svg width="10" height="10"></svg></td><td>since 2001</td></tr>
<tr><td>Le Cinq</td><td><svg width="10" height="10"></svg></td><td>since 2001</td></tr>
</table>
</body></html>`

func TestRunEndToEnd(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		wiki + "/wiki/Seed_B": seedPage,
		wiki + "/wiki/List_of_Michelin_starred_restaurants_in_France": francePage,
	}}
	p := New(testConfig("/wiki/Seed_A", "/wiki/Seed_B"), f, nil)

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/wiki/List_of_Michelin_starred_restaurants_in_France",
		"/wiki/List_of_Michelin_starred_restaurants_in_Spain",
	}, res.Links)
	assert.Equal(t, 1, res.PagesFetched)
	assert.Equal(t, 1, res.PagesFailed)

	require.Equal(t, 1, res.Dataset.Len())
	r := res.Dataset.Records[0]
	assert.Equal(t, wiki+"/wiki/List_of_Michelin_starred_restaurants_in_France", r.SourceURL)
	assert.Equal(t, "Le Cinq", r.RestaurantName)
	require.NotNil(t, r.YearFirstStarred)
	assert.Equal(t, 2001, *r.YearFirstStarred)
	require.NotNil(t, r.Stars)
	assert.Equal(t, 1, *r.Stars)
	assert.Nil(t, r.City)
	assert.Nil(t, r.CuisineType)
}

func TestRunAllSeedsFail(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{}}
	p := New(testConfig("/wiki/Seed_A", "/wiki/Seed_B"), f, nil)

	res, err := p.Run(context.Background())
	assert.ErrorIs(t, err, aggregate.ErrNoData)
	require.NotNil(t, res)
	assert.Empty(t, res.Links)
	assert.Equal(t, 0, res.Dataset.Len())
	assert.Equal(t, []string{wiki + "/wiki/Seed_A", wiki + "/wiki/Seed_B"}, f.visited)
}

func TestRunColumnFallback(t *testing.T) {
	page := `<table class="wikitable">
<tr><th>Establishment</th><th>Town</th><th>Chef</th></tr>
<tr><td>Noma</td><td>Copenhagen</td><td>René Redzepi</td></tr>
<tr><td>Geranium</td><td>Copenhagen</td><td>Rasmus Kofoed</td></tr>
</table>`
	f := &fakeFetcher{pages: map[string]string{
		wiki + "/wiki/Seed": `<a href="/wiki/List_of_Michelin_starred_restaurants_in_Denmark">DK</a>`,
		wiki + "/wiki/List_of_Michelin_starred_restaurants_in_Denmark": page,
	}}
	p := New(testConfig("/wiki/Seed"), f, nil)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, res.Dataset.Len())

	assert.Equal(t, "Noma", res.Dataset.Records[0].RestaurantName)
	assert.Equal(t, "Geranium", res.Dataset.Records[1].RestaurantName)
	assert.Equal(t, "Copenhagen", *res.Dataset.Records[0].City)
	assert.Nil(t, res.Dataset.Records[0].Stars)
}

func TestRunCancelled(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{wiki + "/wiki/Seed_B": seedPage}}
	p := New(testConfig("/wiki/Seed_B"), f, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.visited)
}

type recordingSink struct {
	calls int
	sheet string
	ds    models.Dataset
	err   error
}

func (s *recordingSink) Write(ctx context.Context, sheetName string, ds models.Dataset) error {
	s.calls++
	s.sheet = sheetName
	s.ds = ds
	return s.err
}

type recordingNotifier struct {
	texts []string
}

func (n *recordingNotifier) Notify(ctx context.Context, text string) error {
	n.texts = append(n.texts, text)
	return nil
}

func TestRunnerRunOnce(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		wiki + "/wiki/Seed_B": seedPage,
		wiki + "/wiki/List_of_Michelin_starred_restaurants_in_France": francePage,
	}}
	s := &recordingSink{}
	n := &recordingNotifier{}
	r := NewRunner(New(testConfig("/wiki/Seed_B"), f, nil), s, n, "Michelin Restaurants", "stars.xlsx", nil)

	res, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Dataset.Len())

	assert.Equal(t, 1, s.calls)
	assert.Equal(t, "Michelin Restaurants", s.sheet)
	assert.Equal(t, res.Dataset, s.ds)

	require.Len(t, n.texts, 1)
	assert.Contains(t, n.texts[0], "Restaurants: 1")
	assert.Contains(t, n.texts[0], "Output: stars.xlsx")
}

func TestRunnerNoDataWritesNothing(t *testing.T) {
	s := &recordingSink{}
	n := &recordingNotifier{}
	r := NewRunner(New(testConfig("/wiki/Seed_A"), &fakeFetcher{}, nil), s, n, "sheet", "stars.xlsx", nil)

	_, err := r.RunOnce(context.Background())
	assert.ErrorIs(t, err, aggregate.ErrNoData)
	assert.Equal(t, 0, s.calls)

	require.Len(t, n.texts, 1)
	assert.Contains(t, n.texts[0], "Error: no data")
	assert.NotContains(t, n.texts[0], "Output:")
}

func TestRunnerSinkError(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		wiki + "/wiki/Seed_B": seedPage,
		wiki + "/wiki/List_of_Michelin_starred_restaurants_in_France": francePage,
	}}
	boom := errors.New("disk full")
	r := NewRunner(New(testConfig("/wiki/Seed_B"), f, nil), &recordingSink{err: boom}, nil, "sheet", "", nil)

	_, err := r.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
}
