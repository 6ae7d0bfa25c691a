package llm

import (
	"context"
	"errors"
	"testing"

	cachex "github.com/alessalabs/concierge/agent/cache"
	contractx "github.com/alessalabs/concierge/agent/contract"
)

func TestSettingsForDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{Model: "gpt-4o-mini", Temperature: 0.5, RouterTemperature: -1}
	model, temp := cfg.settingsFor(PurposeRouter)
	if model != "gpt-4o-mini" || temp != 0.5 {
		t.Fatalf("settingsFor() = %q, %v", model, temp)
	}
}

func TestSettingsForPurposeOverrides(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Model:              "gpt-4o-mini",
		Temperature:        0.5,
		MedicalModel:       "gpt-4o",
		MedicalTemperature: 0.1,
	}
	model, temp := cfg.settingsFor(PurposeMedical)
	if model != "gpt-4o" || temp != 0.1 {
		t.Fatalf("settingsFor() = %q, %v", model, temp)
	}

	// Other purposes keep the defaults.
	model, temp = cfg.settingsFor(PurposeSales)
	if model != "gpt-4o-mini" || temp != 0.5 {
		t.Fatalf("settingsFor() = %q, %v", model, temp)
	}
}

func TestSettingsForZeroTemperatureOverride(t *testing.T) {
	t.Parallel()

	cfg := Config{Model: "gpt-4o-mini", Temperature: 0.5, RouterTemperature: 0}
	if _, temp := cfg.settingsFor(PurposeRouter); temp != 0 {
		t.Fatalf("temperature = %v, want 0", temp)
	}
}

func TestValidateRequiresModel(t *testing.T) {
	t.Parallel()

	if err := (Config{Model: "  "}).Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Validate() error = %v, want ErrValidation", err)
	}
	if err := (Config{Model: "gpt-4o-mini"}).Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestCompleteUnconfiguredClient(t *testing.T) {
	t.Parallel()

	m := NewModel(nil, Config{Model: "gpt-4o-mini"}, PurposeSales, cachex.New(cachex.Config{}))
	_, err := m.Complete(context.Background(), "system", "user")
	if !errors.Is(err, contractx.ErrModelUnconfigured) {
		t.Fatalf("Complete() error = %v, want ErrModelUnconfigured", err)
	}
}
