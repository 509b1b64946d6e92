package trackconfig

import "testing"

func TestLoadDefaultsFile(t *testing.T) {
	cfg := MustLoadDefaultConfig()

	if cfg.ProcessNoise == nil {
		t.Fatal("ProcessNoise must be set")
	}
	if cfg.InitiationM == nil || cfg.InitiationN == nil {
		t.Fatal("InitiationM/InitiationN must be set")
	}
	if cfg.AllowDoubleUse == nil {
		t.Fatal("AllowDoubleUse must be set")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults file failed validation: %v", err)
	}

	if cfg.GetInitiationN() < cfg.GetInitiationM() {
		t.Errorf("N (%d) must be >= M (%d)", cfg.GetInitiationN(), cfg.GetInitiationM())
	}
	if cfg.GetGateProbability() <= 0 || cfg.GetGateProbability() >= 1 {
		t.Errorf("GetGateProbability() out of range: %v", cfg.GetGateProbability())
	}
}

func TestEmptyConfig_GettersFallBackToDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	if cfg.GetProcessNoise() <= 0 {
		t.Error("expected positive default process noise")
	}
	if cfg.GetInitiationN() < cfg.GetInitiationM() {
		t.Error("expected default N >= M")
	}
	if !cfg.GetAllowDoubleUse() {
		t.Error("expected AllowDoubleUse to default true")
	}
}

func TestValidate_RejectsInvertedInitiationWindow(t *testing.T) {
	m, n := 5, 3
	cfg := &TuningConfig{InitiationM: &m, InitiationN: &n}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for N < M")
	}
}

func TestValidate_RejectsOutOfRangeGateProbability(t *testing.T) {
	bad := 1.5
	cfg := &TuningConfig{GateProbability: &bad}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for gate_probability > 1")
	}
}
