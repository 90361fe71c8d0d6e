package config

import (
	"time"

	"github.com/CodingBot000/miracle3day-sub001/internal/capture"
	"github.com/CodingBot000/miracle3day-sub001/internal/guidance"
	"github.com/CodingBot000/miracle3day-sub001/internal/log"
	"github.com/CodingBot000/miracle3day-sub001/internal/quality"
)

// Config holds every tunable of the capture engine and its server
type Config struct {
	Server   ServerConfig    `yaml:"server" json:"server"`
	Capture  capture.Config  `yaml:"capture" json:"capture"`
	Guidance guidance.Config `yaml:"guidance" json:"guidance"`
	Quality  QualityConfig   `yaml:"quality" json:"quality"`
	Frame    FrameConfig     `yaml:"frame" json:"frame"`
	Log      log.Options     `yaml:"log" json:"log"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr        string  `yaml:"addr" json:"addr" validate:"required"`
	BodyLimit   int     `yaml:"body_limit" json:"body_limit" validate:"gt=0"`
	MaxSessions int     `yaml:"max_sessions" json:"max_sessions" validate:"gt=0"`
	UploadRate  float64 `yaml:"upload_rate" json:"upload_rate" validate:"gt=0"` // frames per second per session
	UploadBurst int     `yaml:"upload_burst" json:"upload_burst" validate:"gte=1"`
}

// QualityConfig selects and tunes the analysis source
type QualityConfig struct {
	Mode           string             `yaml:"mode" json:"mode" validate:"omitempty,oneof=heuristic external auto"`
	ExternalMaxAge time.Duration      `yaml:"external_max_age" json:"external_max_age" validate:"gte=0"`
	Seed           uint64             `yaml:"seed" json:"seed"` // tilt coin seed
	Thresholds     quality.Thresholds `yaml:"thresholds" json:"thresholds"`
}

// FrameConfig controls decoding of uploaded and replayed images
type FrameConfig struct {
	MaxDimension int `yaml:"max_dimension" json:"max_dimension" validate:"gte=0"`
}
