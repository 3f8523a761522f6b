// Package config handles wiretool configuration loading and management.
package config

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/wireframe/pkg/mesh"
	"github.com/Faultbox/wireframe/pkg/shading"
)

// Extraction modes.
const (
	ModeAuto     = "auto"
	ModeFull     = "full"
	ModeExternal = "external"
)

// Config holds all wiretool settings.
type Config struct {
	Extract ExtractConfig `yaml:"extract"`
	Shading ShadingConfig `yaml:"shading"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExtractConfig holds pipeline settings.
type ExtractConfig struct {
	Mode              string   `yaml:"mode"` // auto, full or external
	SmoothNormals     bool     `yaml:"smooth_normals"`
	RandomColors      bool     `yaml:"random_colors"`
	ForceColors       bool     `yaml:"force_colors"`
	SmoothScale       float32  `yaml:"smooth_scale"`
	ColorTolerance    float32  `yaml:"color_tolerance"`
	Seed              int64    `yaml:"seed"` // 0 = unseeded
	StableIDAttribute string   `yaml:"stable_id_attribute"`
	NormalAttributes  []string `yaml:"normal_attributes"`
	KeepSource        bool     `yaml:"keep_source"`
}

// ShadingConfig is the material snapshot attached to every line mesh.
type ShadingConfig struct {
	LineColor             [4]float32 `yaml:"line_color"`
	FillColor             [4]float32 `yaml:"fill_color"`
	OutlineWidth          float32    `yaml:"outline_width"`
	WireframeDisplacement float32    `yaml:"wireframe_displacement"`
	FillDisplacement      float32    `yaml:"fill_displacement"`
	FillShininess         float32    `yaml:"fill_shininess"`
	FillSpecularStrength  float32    `yaml:"fill_specular_strength"`
}

// ServerConfig holds HTTP service settings.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	mat := shading.DefaultMaterial()
	return &Config{
		Extract: ExtractConfig{
			Mode:              ModeAuto,
			SmoothNormals:     true,
			RandomColors:      true,
			SmoothScale:       1000,
			ColorTolerance:    1e-5,
			StableIDAttribute: mesh.AttrStableID,
			NormalAttributes:  []string{mesh.AttrSmoothNormal, mesh.AttrNormal},
			KeepSource:        true,
		},
		Shading: ShadingConfig{
			LineColor:             mat.LineColor,
			FillColor:             mat.FillColor,
			OutlineWidth:          mat.OutlineWidth,
			WireframeDisplacement: mat.WireframeDisplacement,
			FillDisplacement:      mat.FillDisplacement,
			FillShininess:         mat.FillShininess,
			FillSpecularStrength:  mat.FillSpecularStrength,
		},
		Server: ServerConfig{
			Addr:        "127.0.0.1:8080",
			MaxUploadMB: 64,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values the pipeline cannot repair on its own.
func (c *Config) Validate() error {
	switch c.Extract.Mode {
	case ModeAuto, ModeFull, ModeExternal:
	default:
		return fmt.Errorf("extract.mode: unknown mode %q", c.Extract.Mode)
	}
	if c.Extract.SmoothScale <= 0 {
		return fmt.Errorf("extract.smooth_scale must be positive, got %v", c.Extract.SmoothScale)
	}
	if c.Extract.ColorTolerance <= 0 {
		return fmt.Errorf("extract.color_tolerance must be positive, got %v", c.Extract.ColorTolerance)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	return nil
}

// Material returns the shading snapshot.
func (s ShadingConfig) Material() shading.Material {
	return shading.Material{
		LineColor:             mgl32.Vec4(s.LineColor),
		FillColor:             mgl32.Vec4(s.FillColor),
		OutlineWidth:          s.OutlineWidth,
		WireframeDisplacement: s.WireframeDisplacement,
		FillDisplacement:      s.FillDisplacement,
		FillShininess:         s.FillShininess,
		FillSpecularStrength:  s.FillSpecularStrength,
	}
}
