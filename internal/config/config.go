package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Discovery  DiscoveryConfig  `mapstructure:"discovery"`
	QuerySpace QuerySpaceConfig `mapstructure:"query_space"`
	ICP        ICPConfig        `mapstructure:"icp"`
	Sources    SourcesConfig    `mapstructure:"sources"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the driver-specific connection string.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	}
	return c.Path
}

// DiscoveryConfig holds the pipeline-level knobs for one discovery run.
type DiscoveryConfig struct {
	DailyLimit    int           `mapstructure:"daily_limit"`
	BatchSize     int           `mapstructure:"batch_size"`
	FanoutLimit   int           `mapstructure:"fanout_limit"`
	Cooldown      time.Duration `mapstructure:"cooldown"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"`
	RunDeadline   time.Duration `mapstructure:"run_deadline"`
}

// QuerySpaceConfig defines the dimensions of the combinatorial search space.
// Keywords are grouped per industry; the total space is the product of
// industries x locations x per-industry keywords.
type QuerySpaceConfig struct {
	Industries []string            `mapstructure:"industries"`
	Locations  []string            `mapstructure:"locations"`
	Keywords   map[string][]string `mapstructure:"keywords"`
}

// ICPConfig is the ideal customer profile used to score candidates.
// Weights are additive on top of a base score; see service.Scorer.
type ICPConfig struct {
	IndustryWeights map[string]float64 `mapstructure:"industry_weights"`
	LocationWeights map[string]float64 `mapstructure:"location_weights"`
	SizeWeights     map[string]float64 `mapstructure:"size_weights"`
	PainPoints      []string           `mapstructure:"pain_points"`
	TechIndicators  []string           `mapstructure:"tech_indicators"`
	ScoreThreshold  float64            `mapstructure:"score_threshold"`
}

type SourcesConfig struct {
	GoogleMaps SerpSourceConfig      `mapstructure:"google_maps"`
	Yelp       SerpSourceConfig      `mapstructure:"yelp"`
	Directory  DirectorySourceConfig `mapstructure:"directory"`
}

// SerpSourceConfig configures a SerpAPI-backed adapter.
type SerpSourceConfig struct {
	Enabled   bool    `mapstructure:"enabled"`
	APIKey    string  `mapstructure:"api_key"`
	BaseURL   string  `mapstructure:"base_url"`
	RateLimit float64 `mapstructure:"rate_limit"`
	Priority  int     `mapstructure:"priority"`
}

// DirectorySourceConfig configures the local directory-dump adapter.
type DirectorySourceConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Path     string `mapstructure:"path"`
	Priority int    `mapstructure:"priority"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/leadscout.db")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("discovery.daily_limit", 50)
	v.SetDefault("discovery.batch_size", 5)
	v.SetDefault("discovery.fanout_limit", 4)
	v.SetDefault("discovery.cooldown", 24*time.Hour)
	v.SetDefault("discovery.fetch_timeout", 30*time.Second)
	v.SetDefault("discovery.run_deadline", 10*time.Minute)
	v.SetDefault("query_space.industries", []string{
		"hospitality", "tourism", "restaurant", "retail", "healthcare",
		"professional_services", "wellness", "construction", "education",
	})
	v.SetDefault("query_space.locations", []string{
		"Honolulu", "Oahu", "Maui", "Kauai", "Big Island",
		"Waikiki", "Kailua-Kona", "Hilo",
	})
	v.SetDefault("query_space.keywords", map[string][]string{
		"hospitality":           {"hotel", "resort", "vacation rental", "bed and breakfast", "boutique hotel"},
		"tourism":               {"tour operator", "activity provider", "snorkeling", "boat tours", "luau"},
		"restaurant":            {"restaurant", "cafe", "food truck", "catering", "seafood restaurant"},
		"retail":                {"boutique", "gift shop", "surf shop", "art gallery", "jewelry store"},
		"healthcare":            {"medical clinic", "dental office", "urgent care", "wellness center"},
		"professional_services": {"law firm", "accounting firm", "real estate", "property management"},
		"wellness":              {"spa", "massage", "yoga studio", "fitness center"},
		"construction":          {"contractor", "builder", "remodeling", "landscaping"},
		"education":             {"tutoring", "training center", "preschool"},
	})
	v.SetDefault("icp.industry_weights", map[string]float64{
		"tourism": 25, "hospitality": 25, "healthcare": 20, "finance": 20,
		"retail": 15, "real_estate": 15, "professional_services": 15,
		"education": 12, "government": 10, "construction": 10, "agriculture": 8,
	})
	v.SetDefault("icp.location_weights", map[string]float64{
		"honolulu": 15, "oahu": 15, "maui": 12, "kauai": 12,
		"big island": 12, "hawaii": 10,
	})
	v.SetDefault("icp.size_weights", map[string]float64{
		"1-10": 5, "10-50": 20, "51-100": 25, "101-250": 25,
		"251-500": 20, "501-1000": 10, "1000+": 5,
	})
	v.SetDefault("icp.pain_points", []string{
		"manual processes", "data analysis", "customer experience", "automation",
		"efficiency", "digital transformation", "operational costs",
		"scaling challenges", "customer insights", "predictive analytics",
	})
	v.SetDefault("icp.tech_indicators", []string{
		"website", "online booking", "mobile app", "ecommerce", "crm",
		"digital marketing", "social media", "cloud", "api", "integration",
	})
	v.SetDefault("icp.score_threshold", 70.0)
	v.SetDefault("sources.google_maps.enabled", true)
	v.SetDefault("sources.google_maps.base_url", "https://serpapi.com")
	v.SetDefault("sources.google_maps.rate_limit", 1.0)
	v.SetDefault("sources.google_maps.priority", 0)
	v.SetDefault("sources.yelp.enabled", true)
	v.SetDefault("sources.yelp.base_url", "https://serpapi.com")
	v.SetDefault("sources.yelp.rate_limit", 1.0)
	v.SetDefault("sources.yelp.priority", 1)
	v.SetDefault("sources.directory.enabled", true)
	v.SetDefault("sources.directory.path", "./data/directories")
	v.SetDefault("sources.directory.priority", 2)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.name", "DB_NAME")
	v.BindEnv("discovery.daily_limit", "DAILY_LEAD_LIMIT")
	v.BindEnv("icp.score_threshold", "ICP_SCORE_THRESHOLD")
	v.BindEnv("sources.google_maps.api_key", "SERPAPI_KEY")
	v.BindEnv("sources.yelp.api_key", "SERPAPI_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
