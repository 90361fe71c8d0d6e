package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/CodingBot000/miracle3day-sub001/internal/capture"
	"github.com/CodingBot000/miracle3day-sub001/internal/frame"
	"github.com/CodingBot000/miracle3day-sub001/internal/guidance"
	"github.com/CodingBot000/miracle3day-sub001/internal/log"
	"github.com/CodingBot000/miracle3day-sub001/internal/quality"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "CAPTURE_"

// Default returns the production configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8080",
			BodyLimit:   8 * 1024 * 1024,
			MaxSessions: 64,
			UploadRate:  15,
			UploadBurst: 5,
		},
		Capture:  capture.DefaultConfig(),
		Guidance: guidance.DefaultConfig(),
		Quality: QualityConfig{
			Mode:           string(quality.ModeHeuristic),
			ExternalMaxAge: 500 * time.Millisecond,
			Seed:           1,
			Thresholds:     quality.DefaultThresholds(),
		},
		Frame: FrameConfig{MaxDimension: frame.DefaultMaxDimension},
		Log:   log.Options{Level: "info"},
	}
}

// Load builds the configuration from defaults, an optional .env file, an
// optional YAML file at path and CAPTURE_* environment variables, in that
// order, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	// .env only seeds variables that are not already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warnf("Failed to read .env: %v", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		log.Debugf("Loaded config file %s", path)
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct constraints and cross-field rules
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	th := cfg.Quality.Thresholds
	if len(th.Lighting.Brightness) == 0 || len(th.Straightness.Edge) == 0 || len(th.Position.Size) == 0 {
		return fmt.Errorf("invalid config: score bands must not be empty")
	}
	if th.Detection.MinBrightness >= th.Detection.MaxBrightness {
		return fmt.Errorf("invalid config: detection brightness range is empty")
	}
	if th.Classifier.GoodAreaMin > th.Classifier.GoodAreaMax {
		return fmt.Errorf("invalid config: good area range is empty")
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

// applyEnv overrides cfg from CAPTURE_* variables
func applyEnv(cfg *Config, lookup lookupFunc) error {
	var errs []error
	env := settings{lookup: lookup, errs: &errs}

	if val := env.getString("ADDR"); val != "" {
		cfg.Server.Addr = val
	}
	if val := env.getInt("MAX_SESSIONS"); val > 0 {
		cfg.Server.MaxSessions = val
	}
	if val := env.getFloat("UPLOAD_RATE"); val > 0 {
		cfg.Server.UploadRate = val
	}
	if val := env.getInt("UPLOAD_BURST"); val > 0 {
		cfg.Server.UploadBurst = val
	}
	if val := env.getDuration("TICK_INTERVAL"); val > 0 {
		cfg.Capture.TickInterval = val
	}
	if val, ok := env.getDurationOK("DEBOUNCE"); ok {
		cfg.Guidance.Debounce = val
	}
	if val := env.getString("MODE"); val != "" {
		cfg.Quality.Mode = val
	}
	if val, ok := env.getDurationOK("EXTERNAL_MAX_AGE"); ok {
		cfg.Quality.ExternalMaxAge = val
	}
	if val := env.getInt("SEED"); val > 0 {
		cfg.Quality.Seed = uint64(val)
	}
	if val := env.getInt("MAX_DIMENSION"); val > 0 {
		cfg.Frame.MaxDimension = val
	}
	if val := env.getString("LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := env.getString("LOG_FILE"); val != "" {
		cfg.Log.File = val
	}

	return errors.Join(errs...)
}

// settings reads typed CAPTURE_* values, collecting parse errors
type settings struct {
	lookup lookupFunc
	errs   *[]error
}

// getString retrieves a string setting
func (s settings) getString(key string) string {
	val, _ := s.lookup(EnvPrefix + key)
	return val
}

// getInt retrieves an integer setting
func (s settings) getInt(key string) int {
	raw := s.getString(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*s.errs = append(*s.errs, fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err))
		return 0
	}
	return v
}

// getFloat retrieves a float setting
func (s settings) getFloat(key string) float64 {
	raw := s.getString(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*s.errs = append(*s.errs, fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err))
		return 0
	}
	return v
}

// getDuration retrieves a duration setting such as "100ms"
func (s settings) getDuration(key string) time.Duration {
	v, _ := s.getDurationOK(key)
	return v
}

// getDurationOK is getDuration that also reports whether the key was set,
// so an explicit zero can be told apart from an absent value
func (s settings) getDurationOK(key string) (time.Duration, bool) {
	raw := s.getString(key)
	if raw == "" {
		return 0, false
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*s.errs = append(*s.errs, fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err))
		return 0, false
	}
	return v, true
}
