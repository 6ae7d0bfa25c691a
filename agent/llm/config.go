package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/alessalabs/concierge/agent/contract"
)

// Purpose names the caller of a completion; each purpose may pin its own
// model and temperature.
type Purpose string

const (
	PurposeRouter  Purpose = "router"
	PurposeSales   Purpose = "sales"
	PurposeMedical Purpose = "medical"
)

type Config struct {
	Model              string        `envconfig:"MODEL" split_words:"true" default:"gpt-4o-mini"`
	MaxCompletionToken int64         `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`

	RouterModel        string  `envconfig:"ROUTER_MODEL" split_words:"true"`
	SalesModel         string  `envconfig:"SALES_MODEL" split_words:"true"`
	MedicalModel       string  `envconfig:"MEDICAL_MODEL" split_words:"true"`
	RouterTemperature  float64 `envconfig:"ROUTER_TEMPERATURE" split_words:"true" default:"-1"`
	SalesTemperature   float64 `envconfig:"SALES_TEMPERATURE" split_words:"true" default:"-1"`
	MedicalTemperature float64 `envconfig:"MEDICAL_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// settingsFor resolves the effective model name and temperature for a
// purpose, falling back to the defaults.
func (c Config) settingsFor(purpose Purpose) (string, float64) {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch purpose {
	case PurposeRouter:
		if v := strings.TrimSpace(c.RouterModel); v != "" {
			modelName = v
		}
		if c.RouterTemperature >= 0 {
			temp = c.RouterTemperature
		}
	case PurposeSales:
		if v := strings.TrimSpace(c.SalesModel); v != "" {
			modelName = v
		}
		if c.SalesTemperature >= 0 {
			temp = c.SalesTemperature
		}
	case PurposeMedical:
		if v := strings.TrimSpace(c.MedicalModel); v != "" {
			modelName = v
		}
		if c.MedicalTemperature >= 0 {
			temp = c.MedicalTemperature
		}
	}

	return modelName, temp
}
