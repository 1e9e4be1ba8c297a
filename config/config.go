package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Crisisflow CrisisflowConfig `yaml:"crisisflow"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Registry   RegistryConfig   `yaml:"registry"`
	Inputs     InputsConfig     `yaml:"inputs"`
	Report     ReportConfig     `yaml:"report"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type CrisisflowConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// AnalysisConfig carries every threshold and window the analytical
// components recognize. All values are overridable per run; module-level
// constants are deliberately absent so alternate threshold tables can be
// exercised without shared state.
type AnalysisConfig struct {
	MinSampleSize         int     `yaml:"min_sample_size"`
	SellPressureThreshold float64 `yaml:"sell_pressure_threshold"`
	BuyPressureThreshold  float64 `yaml:"buy_pressure_threshold"`
	LookbackDays          int     `yaml:"lookback_days"`
	LookaheadDays         int     `yaml:"lookahead_days"`
	HighImpactPct         float64 `yaml:"high_impact_pct"`
	ModerateImpactPct     float64 `yaml:"moderate_impact_pct"`
	HighPremiumPct        float64 `yaml:"high_premium_pct"`
	StablePremiumPct      float64 `yaml:"stable_premium_pct"`
	MaxWorkers            int     `yaml:"max_workers"`
}

// DefaultAnalysis returns the documented default thresholds.
func DefaultAnalysis() AnalysisConfig {
	return AnalysisConfig{
		MinSampleSize:         3,
		SellPressureThreshold: 0.90,
		BuyPressureThreshold:  0.10,
		LookbackDays:          7,
		LookaheadDays:         14,
		HighImpactPct:         20,
		ModerateImpactPct:     10,
		HighPremiumPct:        100,
		StablePremiumPct:      10,
		MaxWorkers:            1,
	}
}

type RegistryConfig struct {
	CountriesPath string `yaml:"countries_path"`
	EventsPath    string `yaml:"events_path"`
}

type InputsConfig struct {
	AdsPath    string `yaml:"ads_path"`
	RatesPath  string `yaml:"rates_path"`
	PricesPath string `yaml:"prices_path"`
	Asset      string `yaml:"asset"`
}

type ReportConfig struct {
	OutputDir string        `yaml:"output_dir"`
	Formats   FormatsConfig `yaml:"formats"`
}

type FormatsConfig struct {
	Parquet ParquetConfig `yaml:"parquet"`
	JSON    JSONConfig    `yaml:"json"`
}

type ParquetConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Compression string `yaml:"compression"`
}

type JSONConfig struct {
	Enabled bool `yaml:"enabled"`
	Pretty  bool `yaml:"pretty"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"`
	Output        string `yaml:"output"`
	MaxAge        int    `yaml:"max_age"`
	DashboardName string `yaml:"dashboard_name"`
}

func LoadConfig(path string) (*Config, error) {
	// Read configuration file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{
		Analysis: DefaultAnalysis(),
		Inputs:   InputsConfig{Asset: "BTC"},
		Report: ReportConfig{
			OutputDir: "results",
			Formats: FormatsConfig{
				Parquet: ParquetConfig{Enabled: true, Compression: "snappy"},
				JSON:    JSONConfig{Enabled: true, Pretty: true},
			},
		},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override S3 settings from environment variables if available
	if config.Storage.S3.Enabled {
		if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
			config.Storage.S3.AccessKeyID = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
			config.Storage.S3.SecretAccessKey = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_REGION"); v != "" {
			config.Storage.S3.Region = strings.TrimSpace(v)
		}
		if v := os.Getenv("S3_BUCKET"); v != "" {
			config.Storage.S3.Bucket = strings.TrimSpace(v)
		}
	}

	config.Storage.S3.Bucket = strings.TrimSpace(config.Storage.S3.Bucket)

	// Production-like environments log structured JSON unless told otherwise.
	if config.Logging.Format == "" {
		if IsProductionLike(AppEnvironment()) {
			config.Logging.Format = "json"
		} else {
			config.Logging.Format = "text"
		}
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Crisisflow.Name == "" {
		return fmt.Errorf("crisisflow.name is required")
	}

	if cfg.Crisisflow.Version == "" {
		return fmt.Errorf("crisisflow.version is required")
	}

	if err := validateAnalysis(&cfg.Analysis); err != nil {
		return err
	}

	if cfg.Storage.S3.Enabled {
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required when S3 is enabled")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("storage.s3.region is required when S3 is enabled")
		}
		if cfg.Storage.S3.AccessKeyID == "" || cfg.Storage.S3.SecretAccessKey == "" {
			return fmt.Errorf("storage.s3.access_key_id and storage.s3.secret_access_key are required when S3 is enabled")
		}
		if !isValidS3Bucket(cfg.Storage.S3.Bucket) {
			return fmt.Errorf("storage.s3.bucket '%s' is invalid", cfg.Storage.S3.Bucket)
		}
	}

	return nil
}

func validateAnalysis(cfg *AnalysisConfig) error {
	if cfg.MinSampleSize <= 0 {
		return fmt.Errorf("analysis.min_sample_size must be greater than 0")
	}
	if cfg.SellPressureThreshold <= 0 || cfg.SellPressureThreshold > 1 {
		return fmt.Errorf("analysis.sell_pressure_threshold must be in (0,1]")
	}
	if cfg.BuyPressureThreshold < 0 || cfg.BuyPressureThreshold >= 1 {
		return fmt.Errorf("analysis.buy_pressure_threshold must be in [0,1)")
	}
	if cfg.BuyPressureThreshold >= cfg.SellPressureThreshold {
		return fmt.Errorf("analysis.buy_pressure_threshold must be below sell_pressure_threshold")
	}
	if cfg.LookbackDays <= 0 {
		return fmt.Errorf("analysis.lookback_days must be greater than 0")
	}
	if cfg.LookaheadDays <= 0 {
		return fmt.Errorf("analysis.lookahead_days must be greater than 0")
	}
	if cfg.ModerateImpactPct <= 0 || cfg.HighImpactPct <= cfg.ModerateImpactPct {
		return fmt.Errorf("analysis impact cut points must satisfy 0 < moderate < high")
	}
	if cfg.StablePremiumPct <= 0 || cfg.HighPremiumPct <= cfg.StablePremiumPct {
		return fmt.Errorf("analysis premium cut points must satisfy 0 < stable < high")
	}
	if cfg.MaxWorkers <= 0 {
		return fmt.Errorf("analysis.max_workers must be greater than 0")
	}
	return nil
}

var s3BucketRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

func isValidS3Bucket(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	return s3BucketRegexp.MatchString(name)
}
