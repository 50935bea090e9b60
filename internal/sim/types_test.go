package sim

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Frames <= 0 {
		t.Error("DefaultConfig has invalid Frames")
	}
	if cfg.SampleEvery <= 0 {
		t.Error("DefaultConfig has invalid SampleEvery")
	}
	if !cfg.ValidateState {
		t.Error("DefaultConfig should validate state")
	}
}

func TestSimError(t *testing.T) {
	err := SimError{Frame: 150, Message: "test error"}
	expected := "frame 150: test error"
	if err.Error() != expected {
		t.Errorf("SimError.Error() = %q, want %q", err.Error(), expected)
	}
}
