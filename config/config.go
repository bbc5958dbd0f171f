package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every setting of a crawl
type Config struct {
	Crawl  CrawlConfig  `yaml:"crawl"`
	Fetch  FetchConfig  `yaml:"fetch"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

// CrawlConfig describes where to start and which links and tables to keep
type CrawlConfig struct {
	BaseURL     string   `yaml:"base_url"`
	Seeds       []string `yaml:"seeds"`
	LinkMarkers []string `yaml:"link_markers"`
	Countries   []string `yaml:"countries"`
	Cities      []string `yaml:"cities"`
	TableClass  string   `yaml:"table_class"`
}

// FetchConfig holds the HTTP fetch settings
type FetchConfig struct {
	Backend     string        `yaml:"backend"` // "colly" or "rod"
	UserAgent   string        `yaml:"user_agent"`
	SeedTimeout time.Duration `yaml:"seed_timeout"`
	PageTimeout time.Duration `yaml:"page_timeout"`
	Delay       time.Duration `yaml:"delay"`
}

// OutputConfig selects the sinks the dataset is written to
type OutputConfig struct {
	File           string `yaml:"file"`
	SheetName      string `yaml:"sheet_name"`
	SpreadsheetURL string `yaml:"spreadsheet_url"`
	Credentials    string `yaml:"credentials"`
	DatabaseURL    string `yaml:"database_url"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// LoadConfig loads configuration from a YAML file. Missing keys keep their
// default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings the crawl cannot run without
func (c *Config) Validate() error {
	if len(c.Crawl.Seeds) == 0 {
		return fmt.Errorf("invalid config: no seed pages")
	}
	if len(c.Crawl.Countries) == 0 && len(c.Crawl.Cities) == 0 {
		return fmt.Errorf("invalid config: country and city allow-lists are both empty")
	}
	if c.Crawl.TableClass == "" {
		return fmt.Errorf("invalid config: table_class is empty")
	}
	switch c.Fetch.Backend {
	case "", "colly", "rod":
	default:
		return fmt.Errorf("invalid config: unknown fetch backend %q", c.Fetch.Backend)
	}
	return nil
}

// GetDefaultConfig returns the Wikipedia Michelin crawl configuration
func GetDefaultConfig() *Config {
	cfg := &Config{}

	cfg.Crawl.BaseURL = "https://en.wikipedia.org"
	cfg.Crawl.Seeds = []string{
		"/wiki/List_of_Michelin_3-star_restaurants",
		"/wiki/List_of_Michelin_2-star_restaurants",
		"/wiki/List_of_Michelin_starred_restaurants_in_Europe",
	}
	cfg.Crawl.LinkMarkers = []string{"List_of_Michelin", "restaurant"}
	cfg.Crawl.Countries = append([]string(nil), DefaultCountries...)
	cfg.Crawl.Cities = append([]string(nil), DefaultCities...)
	cfg.Crawl.TableClass = "wikitable"

	cfg.Fetch.Backend = "colly"
	cfg.Fetch.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36"
	cfg.Fetch.SeedTimeout = 20 * time.Second
	cfg.Fetch.PageTimeout = 25 * time.Second
	cfg.Fetch.Delay = 100 * time.Millisecond

	cfg.Output.File = "finalochka_stars.xlsx"
	cfg.Output.SheetName = "Michelin Restaurants"

	cfg.Log.Level = "info"
	return cfg
}

// DefaultCountries is the European country allow-list
var DefaultCountries = []string{
	"France", "Belgium", "Netherlands", "Luxembourg", "Italy", "Spain", "Portugal", "Austria",
	"Czech", "Hungary", "Poland", "Switzerland", "Slovenia", "Denmark", "Sweden", "Norway",
	"Finland", "Estonia", "Latvia", "Lithuania", "Croatia", "Serbia", "Romania", "Bulgaria",
	"United Kingdom", "Ireland", "Greece", "Cyprus", "Bosnia", "Albania", "Montenegro",
	"Macedonia", "Malta", "Iceland", "Slovakia", "Germany",
}

// DefaultCities is the major European city allow-list
var DefaultCities = []string{
	"Paris", "Lyon", "Marseille", "Nice", "Bordeaux", "Brussels", "Amsterdam", "Rotterdam",
	"Luxembourg", "Rome", "Milan", "Venice", "Florence", "Naples", "Barcelona", "Madrid",
	"Seville", "Valencia", "Lisbon", "Porto", "Vienna", "Prague", "Budapest", "Krakow", "Warsaw",
	"Zurich", "Geneva", "Ljubljana", "Copenhagen", "Stockholm", "Oslo", "Helsinki", "Tallinn",
	"Riga", "Vilnius", "Zagreb", "Dubrovnik", "Belgrade", "Bucharest", "Sofia", "London",
	"Edinburgh", "Manchester", "Dublin", "Athens", "Thessaloniki", "Nicosia", "Sarajevo",
	"Tirana", "Kotor", "Skopje", "Valletta", "Reykjavik", "Bratislava",
}
