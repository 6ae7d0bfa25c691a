// Package router decides which specialist handles a message. Deterministic
// lexicon rules run first; the language model is consulted only when they
// say nothing, and any model trouble falls back to the sales specialist.
package router

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/alessalabs/concierge/agent/contract"
)

// tieBreakAgent wins when both lexicons match, regardless of how many
// terms each contributed. A health concern phrased as a shopping question
// is still a health concern.
const tieBreakAgent = contractx.AgentTypeMedical

// Router implements contract.Router.
type Router struct {
	model        contractx.LanguageModel
	systemPrompt string
}

func New(model contractx.LanguageModel, systemPrompt string) *Router {
	return &Router{model: model, systemPrompt: systemPrompt}
}

// Decide classifies query. It always returns a usable decision; the Source
// field records which layer produced it.
func (r *Router) Decide(ctx context.Context, query string) contractx.RoutingDecision {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return contractx.RoutingDecision{Agent: contractx.AgentTypeSales, Source: contractx.SourceDefault}
	}

	medical := hasAny(normalized, medicalTerms)
	sales := hasAny(normalized, salesTerms)

	switch {
	case medical && !sales:
		return contractx.RoutingDecision{Agent: contractx.AgentTypeMedical, Source: contractx.SourceHeuristic}
	case sales && !medical:
		return contractx.RoutingDecision{Agent: contractx.AgentTypeSales, Source: contractx.SourceHeuristic}
	case medical && sales:
		return contractx.RoutingDecision{Agent: tieBreakAgent, Source: contractx.SourceHeuristic}
	}

	return r.classify(ctx, query)
}

// classify asks the model for a single-word SALES or DOCTOR verdict.
func (r *Router) classify(ctx context.Context, query string) contractx.RoutingDecision {
	if r.model == nil {
		return contractx.RoutingDecision{Agent: contractx.AgentTypeSales, Source: contractx.SourceDefault}
	}

	raw, err := r.model.Complete(ctx, r.systemPrompt, query)
	if err != nil {
		log.Warn().Err(err).Msg("routing classification failed, defaulting to sales")
		return contractx.RoutingDecision{Agent: contractx.AgentTypeSales, Source: contractx.SourceDefault}
	}

	verdict := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.Contains(verdict, "DOCTOR"):
		return contractx.RoutingDecision{Agent: contractx.AgentTypeMedical, Source: contractx.SourceModel}
	case strings.Contains(verdict, "SALES"):
		return contractx.RoutingDecision{Agent: contractx.AgentTypeSales, Source: contractx.SourceModel}
	}

	log.Warn().Str("verdict", raw).Msg("unrecognized routing verdict, defaulting to sales")
	return contractx.RoutingDecision{Agent: contractx.AgentTypeSales, Source: contractx.SourceDefault}
}

// hasAny reports whether any lexicon phrase is present in the normalized
// message.
func hasAny(normalized string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(normalized, term) {
			return true
		}
	}
	return false
}
