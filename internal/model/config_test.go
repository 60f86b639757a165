package model

import (
	"strings"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected the defaults to validate, got %v", err)
	}
	if !cfg.Detectors.Sparsity.Enabled || !cfg.Detectors.ReferenceCount.Enabled {
		t.Error("Expected all detectors enabled by default")
	}
	if !cfg.Verify.Enabled {
		t.Error("Expected verification enabled by default")
	}
	if cfg.LLM.Provider != "" {
		t.Errorf("Expected the advisory summarizer off by default, got %q", cfg.LLM.Provider)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			"zero concurrency",
			func(c *Config) { c.Verify.Concurrency = 0 },
			"verify.concurrency",
		},
		{
			"non-positive lookup timeout",
			func(c *Config) { c.Verify.LookupTimeout = 0 },
			"verify.lookup_timeout",
		},
		{
			"inverted thresholds",
			func(c *Config) { c.Verify.AmbiguousThreshold = 0.9 },
			"exceeds verified_threshold",
		},
		{
			"negative reference minimum",
			func(c *Config) { c.Detectors.ReferenceCount.Minimum = -1 },
			"reference_count.minimum",
		},
		{
			"unknown search provider",
			func(c *Config) { c.Search.Provider = "bing" },
			"unknown search provider",
		},
		{
			"unknown output format",
			func(c *Config) { c.Output.Format = "pdf" },
			"unknown output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestWithOnly_SubsetsDetectors(t *testing.T) {
	cfg := DefaultConfig()

	out, err := cfg.WithOnly([]string{"citation", "code"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !out.Detectors.Citation.Enabled || !out.Detectors.Code.Enabled {
		t.Error("Expected the named detectors enabled")
	}
	if out.Detectors.Sparsity.Enabled || out.Detectors.Formula.Enabled || out.Detectors.ReferenceCount.Enabled {
		t.Error("Expected unnamed detectors disabled")
	}
	if out.Verify.Enabled {
		t.Error("Expected verification disabled when not named")
	}

	// The receiver is untouched.
	if !cfg.Detectors.Sparsity.Enabled {
		t.Error("Expected the original configuration unchanged")
	}
}

func TestWithOnly_BibliographySelectsVerification(t *testing.T) {
	cfg := DefaultConfig()

	out, err := cfg.WithOnly([]string{"bibliography"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !out.Verify.Enabled {
		t.Error("Expected verification enabled")
	}
	if out.Detectors.Citation.Enabled {
		t.Error("Expected detectors disabled")
	}
}

func TestWithOnly_NamesAreNormalized(t *testing.T) {
	cfg := DefaultConfig()

	out, err := cfg.WithOnly([]string{" Citation ", "CODE"})
	if err != nil {
		t.Fatalf("Expected trimmed case-insensitive names accepted, got %v", err)
	}
	if !out.Detectors.Citation.Enabled || !out.Detectors.Code.Enabled {
		t.Error("Expected both named detectors enabled")
	}
}

func TestWithOnly_UnknownName(t *testing.T) {
	cfg := DefaultConfig()

	_, err := cfg.WithOnly([]string{"plagiarism"})
	if err == nil {
		t.Fatal("Expected an error for an unknown check")
	}
	if !strings.Contains(err.Error(), `unknown check "plagiarism"`) {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestWithOnly_EmptyKeepsEverything(t *testing.T) {
	cfg := DefaultConfig()

	out, err := cfg.WithOnly(nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !out.Detectors.Sparsity.Enabled || !out.Verify.Enabled {
		t.Error("Expected an empty list to keep the configuration unchanged")
	}
}
