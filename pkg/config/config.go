package config

import (
	"fmt"
	"os"
	"time"

	"CurveWatch/pkg/util"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	FRED struct {
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
		// FRED allows 120 requests/minute; stay under it client-side.
		RateLimitPerMin int               `yaml:"rate_limit_per_min"`
		Series          map[string]string `yaml:"series"` // maturity label -> FRED series ID
	} `yaml:"fred"`
	Analytics struct {
		LookbackYears      int           `yaml:"lookback_years"`
		InversionThreshold float64       `yaml:"inversion_threshold"`
		MinInversionDays   int           `yaml:"min_inversion_days"`
		TrailingWindow     int           `yaml:"trailing_window"`
		ShortMaturity      string        `yaml:"short_maturity"`
		LongMaturity       string        `yaml:"long_maturity"`
		RefreshInterval    time.Duration `yaml:"refresh_interval"`
	} `yaml:"analytics"`
	Cache struct {
		TTL   time.Duration `yaml:"ttl"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	// NBER recession date ranges, used only to annotate spread charts.
	Recessions []DateRange `yaml:"recessions"`
}

// DateRange is an inclusive [Start, End] ISO date pair.
type DateRange struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// DefaultSeries is the Treasury constant-maturity series table used when the
// config file does not override it.
var DefaultSeries = map[string]string{
	"1M":  "DGS1MO",
	"3M":  "DGS3MO",
	"6M":  "DGS6MO",
	"1Y":  "DGS1",
	"2Y":  "DGS2",
	"5Y":  "DGS5",
	"10Y": "DGS10",
	"30Y": "DGS30",
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := load(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment
// variables. Overrides are applied before validation so secrets like the
// API key can stay out of the file.
func LoadWithEnv(path string) (*Config, error) {
	c, err := load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("FRED_API_KEY"); v != "" {
		c.FRED.APIKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port := util.ParseIntDefault(v, 0); port > 0 {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Enabled = true
		c.Cache.Redis.Addr = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.FRED.BaseURL == "" {
		c.FRED.BaseURL = "https://api.stlouisfed.org/fred"
	}
	if c.FRED.Timeout == 0 {
		c.FRED.Timeout = 15 * time.Second
	}
	if c.FRED.RateLimitPerMin == 0 {
		c.FRED.RateLimitPerMin = 100
	}
	if len(c.FRED.Series) == 0 {
		c.FRED.Series = DefaultSeries
	}
	if c.Analytics.LookbackYears == 0 {
		c.Analytics.LookbackYears = 10
	}
	if c.Analytics.MinInversionDays == 0 {
		c.Analytics.MinInversionDays = 10
	}
	if c.Analytics.TrailingWindow == 0 {
		c.Analytics.TrailingWindow = 30
	}
	if c.Analytics.ShortMaturity == "" {
		c.Analytics.ShortMaturity = "2Y"
	}
	if c.Analytics.LongMaturity == "" {
		c.Analytics.LongMaturity = "10Y"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = time.Hour
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.FRED.APIKey == "" {
		return fmt.Errorf("fred.api_key is required")
	}
	if len(c.FRED.Series) == 0 {
		return fmt.Errorf("fred.series cannot be empty")
	}
	if c.Analytics.LookbackYears < 1 {
		return fmt.Errorf("analytics.lookback_years must be >= 1, got %d", c.Analytics.LookbackYears)
	}
	if c.Analytics.MinInversionDays < 1 {
		return fmt.Errorf("analytics.min_inversion_days must be >= 1, got %d", c.Analytics.MinInversionDays)
	}
	if _, ok := c.FRED.Series[c.Analytics.ShortMaturity]; !ok {
		return fmt.Errorf("analytics.short_maturity %q has no series mapping", c.Analytics.ShortMaturity)
	}
	if _, ok := c.FRED.Series[c.Analytics.LongMaturity]; !ok {
		return fmt.Errorf("analytics.long_maturity %q has no series mapping", c.Analytics.LongMaturity)
	}
	for _, r := range c.Recessions {
		if r.Start == "" || r.End == "" {
			return fmt.Errorf("recession range must have start and end")
		}
	}
	return nil
}
