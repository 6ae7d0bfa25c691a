package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/router_system.txt
	routerRaw string

	//go:embed template/refine_system.txt
	refineRaw string

	//go:embed template/sales_system.txt
	salesRaw string

	//go:embed template/medical_system.txt
	medicalRaw string

	//go:embed template/decide_system.txt
	decideRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Router  string
	Refine  string
	Sales   string
	Medical string
	Decide  string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// This is safe to call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Router:  strings.TrimSpace(routerRaw),
		Refine:  strings.TrimSpace(refineRaw),
		Sales:   strings.TrimSpace(salesRaw),
		Medical: strings.TrimSpace(medicalRaw),
		Decide:  strings.TrimSpace(decideRaw),
	}
}
