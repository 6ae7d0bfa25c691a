package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/alessalabs/concierge/agent/contract"
)

// Refine asks the language model to distill a shopper message into a product,
// requirements, and a short catalog query. Any model trouble degrades to the
// verbatim query so the pipeline can still search.
type Refine struct {
	model        contractx.LanguageModel
	systemPrompt string
}

func NewRefine(model contractx.LanguageModel, systemPrompt string) *Refine {
	return &Refine{model: model, systemPrompt: systemPrompt}
}

func (r *Refine) Name() string { return NameRefine }

func (r *Refine) Run(ctx context.Context, in contractx.ToolInput) contractx.ToolOutput {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return contractx.ToolOutput{Success: false}
	}

	if r.model == nil {
		return verbatimFallback(query)
	}

	user := "Message: " + query
	if strings.TrimSpace(in.Context) != "" {
		user = fmt.Sprintf("Conversation so far:\n%s\n\nMessage: %s", in.Context, query)
	}

	raw, err := r.model.Complete(ctx, r.systemPrompt, user)
	if err != nil {
		log.Warn().Err(err).Msg("query refinement failed, using verbatim query")
		return verbatimFallback(query)
	}

	out, ok := parseRefinement(raw)
	if !ok {
		log.Warn().Str("raw", raw).Msg("unparseable refinement, using verbatim query")
		return verbatimFallback(query)
	}
	return out
}

// verbatimFallback searches with the shopper's own words.
func verbatimFallback(query string) contractx.ToolOutput {
	return contractx.ToolOutput{
		Success:     false,
		Product:     query,
		SearchQuery: query,
	}
}

// parseRefinement reads the PRODUCT / REQUIREMENTS / SEARCH_QUERY line
// format. A PRODUCT of "none" means the message is not product-related; the
// caller should skip the catalog entirely.
func parseRefinement(raw string) (contractx.ToolOutput, bool) {
	var product, requirements, searchQuery string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(upper, "PRODUCT:"):
			product = strings.TrimSpace(line[len("PRODUCT:"):])
		case strings.HasPrefix(upper, "REQUIREMENTS:"):
			requirements = strings.TrimSpace(line[len("REQUIREMENTS:"):])
		case strings.HasPrefix(upper, "SEARCH_QUERY:"):
			searchQuery = strings.TrimSpace(line[len("SEARCH_QUERY:"):])
		}
	}

	if product == "" && searchQuery == "" {
		return contractx.ToolOutput{}, false
	}

	if strings.EqualFold(product, contractx.RefineSkipSentinel) {
		return contractx.ToolOutput{
			Success: true,
			Product: contractx.RefineSkipSentinel,
		}, true
	}

	if strings.EqualFold(requirements, contractx.RefineSkipSentinel) {
		requirements = ""
	}
	if searchQuery == "" || strings.EqualFold(searchQuery, contractx.RefineSkipSentinel) {
		searchQuery = product
	}

	return contractx.ToolOutput{
		Success:      true,
		Product:      product,
		Requirements: requirements,
		SearchQuery:  searchQuery,
	}, true
}
