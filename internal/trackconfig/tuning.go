// Package trackconfig is the tracking engine's tuning surface: a JSON
// document of optional parameters, each with a documented default, so a
// deployment can override only the knobs it cares about.
package trackconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the canonical tuning defaults file, the single
// source of truth for every default value below.
const DefaultConfigPath = "config/tracking.defaults.json"

// TuningConfig is the root tuning document. Every field is optional;
// the matching Get* method returns the field's value or its documented
// default when the field is nil, so a partial JSON document (or none at
// all) is always safe to load.
type TuningConfig struct {
	// Motion model (internal/track/motion).
	ProcessNoise *float64 `json:"process_noise,omitempty"`

	// Gating (internal/track/gate).
	GateProbability *float64 `json:"gate_probability,omitempty"`
	VelocityCap     *float64 `json:"velocity_cap_mps,omitempty"`

	// Association (internal/track/assoc).
	DetectionProbability *float64 `json:"detection_probability,omitempty"`
	ClutterDensity       *float64 `json:"clutter_density,omitempty"`
	ClutterRate          *float64 `json:"clutter_rate,omitempty"`
	ScanArea             *float64 `json:"scan_area_m2,omitempty"`
	ExistencePersistence *float64 `json:"existence_persistence,omitempty"`
	ExistenceBirth       *float64 `json:"existence_birth,omitempty"`

	// Initiation (internal/track/initiate).
	InitiationM              *int     `json:"initiation_m,omitempty"`
	InitiationN              *int     `json:"initiation_n,omitempty"`
	IPDAInitiationThreshold  *float64 `json:"ipda_initiation_threshold,omitempty"`
	IPDATerminationThreshold *float64 `json:"ipda_termination_threshold,omitempty"`

	// Termination (internal/track/terminate).
	MaxConsecutiveMisses *int `json:"max_consecutive_misses,omitempty"`

	// Manager (internal/track/manager).
	AllowDoubleUse *bool `json:"allow_double_use,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with every field nil, so every
// Get* method falls back to its default.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. Fields absent
// from the file keep their defaults.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath, searching up from the current directory. Panics if
// the file cannot be found; intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
		"../../../../" + DefaultConfigPath,
		"../../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks every set field is within range.
func (c *TuningConfig) Validate() error {
	if c.ProcessNoise != nil && *c.ProcessNoise <= 0 {
		return fmt.Errorf("process_noise must be positive, got %v", *c.ProcessNoise)
	}
	if c.GateProbability != nil && (*c.GateProbability <= 0 || *c.GateProbability >= 1) {
		return fmt.Errorf("gate_probability must be in (0,1), got %v", *c.GateProbability)
	}
	if c.VelocityCap != nil && *c.VelocityCap < 0 {
		return fmt.Errorf("velocity_cap_mps must be non-negative, got %v", *c.VelocityCap)
	}
	if c.DetectionProbability != nil && (*c.DetectionProbability <= 0 || *c.DetectionProbability > 1) {
		return fmt.Errorf("detection_probability must be in (0,1], got %v", *c.DetectionProbability)
	}
	if c.ClutterDensity != nil && *c.ClutterDensity < 0 {
		return fmt.Errorf("clutter_density must be non-negative, got %v", *c.ClutterDensity)
	}
	if c.ClutterRate != nil && *c.ClutterRate < 0 {
		return fmt.Errorf("clutter_rate must be non-negative, got %v", *c.ClutterRate)
	}
	if c.ScanArea != nil && *c.ScanArea <= 0 {
		return fmt.Errorf("scan_area_m2 must be positive, got %v", *c.ScanArea)
	}
	if c.ExistencePersistence != nil && (*c.ExistencePersistence < 0 || *c.ExistencePersistence > 1) {
		return fmt.Errorf("existence_persistence must be in [0,1], got %v", *c.ExistencePersistence)
	}
	if c.ExistenceBirth != nil && (*c.ExistenceBirth < 0 || *c.ExistenceBirth > 1) {
		return fmt.Errorf("existence_birth must be in [0,1], got %v", *c.ExistenceBirth)
	}
	if c.InitiationM != nil && *c.InitiationM < 1 {
		return fmt.Errorf("initiation_m must be >= 1, got %v", *c.InitiationM)
	}
	if c.InitiationN != nil && c.InitiationM != nil && *c.InitiationN < *c.InitiationM {
		return fmt.Errorf("initiation_n (%v) must be >= initiation_m (%v)", *c.InitiationN, *c.InitiationM)
	}
	if c.IPDAInitiationThreshold != nil && (*c.IPDAInitiationThreshold <= 0 || *c.IPDAInitiationThreshold >= 1) {
		return fmt.Errorf("ipda_initiation_threshold must be in (0,1), got %v", *c.IPDAInitiationThreshold)
	}
	if c.IPDATerminationThreshold != nil && (*c.IPDATerminationThreshold <= 0 || *c.IPDATerminationThreshold >= 1) {
		return fmt.Errorf("ipda_termination_threshold must be in (0,1), got %v", *c.IPDATerminationThreshold)
	}
	if c.IPDAInitiationThreshold != nil && c.IPDATerminationThreshold != nil && *c.IPDATerminationThreshold >= *c.IPDAInitiationThreshold {
		return fmt.Errorf("ipda_termination_threshold (%v) must be below ipda_initiation_threshold (%v)", *c.IPDATerminationThreshold, *c.IPDAInitiationThreshold)
	}
	if c.MaxConsecutiveMisses != nil && *c.MaxConsecutiveMisses < 1 {
		return fmt.Errorf("max_consecutive_misses must be >= 1, got %v", *c.MaxConsecutiveMisses)
	}
	return nil
}

// GetProcessNoise returns ProcessNoise or its default.
func (c *TuningConfig) GetProcessNoise() float64 {
	if c.ProcessNoise == nil {
		return 0.25
	}
	return *c.ProcessNoise
}

// GetGateProbability returns GateProbability or its default.
func (c *TuningConfig) GetGateProbability() float64 {
	if c.GateProbability == nil {
		return 0.997
	}
	return *c.GateProbability
}

// GetVelocityCap returns VelocityCap or its default (0 disables the cap).
func (c *TuningConfig) GetVelocityCap() float64 {
	if c.VelocityCap == nil {
		return 0
	}
	return *c.VelocityCap
}

// GetDetectionProbability returns DetectionProbability or its default.
func (c *TuningConfig) GetDetectionProbability() float64 {
	if c.DetectionProbability == nil {
		return 0.9
	}
	return *c.DetectionProbability
}

// GetClutterDensity returns ClutterDensity or its default.
func (c *TuningConfig) GetClutterDensity() float64 {
	if c.ClutterDensity == nil {
		return 1e-5
	}
	return *c.ClutterDensity
}

// GetClutterRate returns ClutterRate or its default.
func (c *TuningConfig) GetClutterRate() float64 {
	if c.ClutterRate == nil {
		return 1.0
	}
	return *c.ClutterRate
}

// GetScanArea returns ScanArea or its default.
func (c *TuningConfig) GetScanArea() float64 {
	if c.ScanArea == nil {
		return 1e6
	}
	return *c.ScanArea
}

// GetExistencePersistence returns ExistencePersistence or its default.
func (c *TuningConfig) GetExistencePersistence() float64 {
	if c.ExistencePersistence == nil {
		return 0.99
	}
	return *c.ExistencePersistence
}

// GetExistenceBirth returns ExistenceBirth or its default.
func (c *TuningConfig) GetExistenceBirth() float64 {
	if c.ExistenceBirth == nil {
		return 0.05
	}
	return *c.ExistenceBirth
}

// GetInitiationM returns InitiationM or its default.
func (c *TuningConfig) GetInitiationM() int {
	if c.InitiationM == nil {
		return 3
	}
	return *c.InitiationM
}

// GetInitiationN returns InitiationN or its default.
func (c *TuningConfig) GetInitiationN() int {
	if c.InitiationN == nil {
		return 5
	}
	return *c.InitiationN
}

// GetIPDAInitiationThreshold returns IPDAInitiationThreshold or its default.
func (c *TuningConfig) GetIPDAInitiationThreshold() float64 {
	if c.IPDAInitiationThreshold == nil {
		return 0.9
	}
	return *c.IPDAInitiationThreshold
}

// GetIPDATerminationThreshold returns IPDATerminationThreshold or its default.
func (c *TuningConfig) GetIPDATerminationThreshold() float64 {
	if c.IPDATerminationThreshold == nil {
		return 0.05
	}
	return *c.IPDATerminationThreshold
}

// GetMaxConsecutiveMisses returns MaxConsecutiveMisses or its default.
func (c *TuningConfig) GetMaxConsecutiveMisses() int {
	if c.MaxConsecutiveMisses == nil {
		return 3
	}
	return *c.MaxConsecutiveMisses
}

// GetAllowDoubleUse returns AllowDoubleUse or its default (true: a
// measurement already claimed by a confirmed track's gate may still
// update tentative tracks this scan; it never seeds a new one).
func (c *TuningConfig) GetAllowDoubleUse() bool {
	if c.AllowDoubleUse == nil {
		return true
	}
	return *c.AllowDoubleUse
}
