// Package sales implements the shopping specialist: decide, refine, search,
// filter, compose. Every degradation has a defined fallback; a turn always
// ends with a reply.
package sales

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	basex "github.com/alessalabs/concierge/agent/agents/base"
	contractx "github.com/alessalabs/concierge/agent/contract"
	sessionx "github.com/alessalabs/concierge/agent/session"
	toolx "github.com/alessalabs/concierge/agent/tool"
)

// Agent is the sales specialist.
type Agent struct {
	basex.Base
	tools        *toolx.Set
	systemPrompt string
}

func New(model contractx.LanguageModel, store *sessionx.Store, tools *toolx.Set, systemPrompt, decidePrompt string) *Agent {
	return &Agent{
		Base: basex.Base{
			Model:        model,
			Store:        store,
			DecidePrompt: decidePrompt,
		},
		tools:        tools,
		systemPrompt: systemPrompt,
	}
}

var _ contractx.Specialist = (*Agent)(nil)

func (a *Agent) Type() contractx.AgentType { return contractx.AgentTypeSales }

// Handle runs one sales turn. The shopping pipeline runs only when the
// decision call says SEARCH; a failed decision stays conversational.
func (a *Agent) Handle(ctx context.Context, sessionID, query string) contractx.TurnRecord {
	contextPrompt := a.ContextPrompt(ctx, sessionID)

	useTools, err := a.DecideToolUse(ctx, contextPrompt, query)
	if err != nil {
		// Never search when unsure.
		log.Warn().Err(err).Msg("tool decision failed, staying conversational")
		useTools = false
	}

	var rec contractx.TurnRecord
	if useTools {
		rec = a.shop(ctx, contextPrompt, query)
	} else {
		rec = a.converse(ctx, contextPrompt, query)
	}
	rec.At = time.Now().UTC()

	a.rememberSignals(ctx, sessionID, query, rec)
	a.PersistTurn(ctx, sessionID, query, contractx.AgentTypeSales, rec)
	return rec
}

func (a *Agent) converse(ctx context.Context, contextPrompt, query string) contractx.TurnRecord {
	steps := []string{basex.StepConversation}

	reply, err := a.Converse(ctx, a.systemPrompt, contextPrompt, query)
	if err != nil {
		log.Warn().Err(err).Msg("sales conversation failed")
		return contractx.TurnRecord{
			Reply:         "I'm having trouble answering right now. Could you try again in a moment?",
			WorkflowSteps: steps,
			Success:       false,
		}
	}
	return contractx.TurnRecord{Reply: reply, WorkflowSteps: steps, Success: true}
}

func (a *Agent) shop(ctx context.Context, contextPrompt, query string) contractx.TurnRecord {
	steps := []string{toolx.NameRefine}

	refined := a.tools.Refine.Run(ctx, contractx.ToolInput{Query: query, Context: contextPrompt})
	if refined.Product == contractx.RefineSkipSentinel {
		// Refinement judged the message non-product; fall back to talk.
		rec := a.converse(ctx, contextPrompt, query)
		rec.WorkflowSteps = append(steps, rec.WorkflowSteps...)
		return rec
	}

	searchQuery := refined.SearchQuery
	if strings.TrimSpace(searchQuery) == "" {
		searchQuery = query
	}

	steps = append(steps, toolx.NameSearch)
	found := a.tools.Search.Run(ctx, contractx.ToolInput{Query: searchQuery})

	// One retry with an alternative phrase when the first search found
	// nothing; never more than one.
	if found.Success && found.Count == 0 {
		if alt := a.alternativeQuery(ctx, query, searchQuery); alt != "" {
			steps = append(steps, "alternative_search")
			found = a.tools.Search.Run(ctx, contractx.ToolInput{Query: alt})
		}
	}

	products := basex.DedupeTop(found.Products)

	if constraint := priceConstraint(query, refined.Requirements); constraint != "" && len(products) > 0 {
		steps = append(steps, toolx.NameFilter)
		filtered := a.tools.Filter.Run(ctx, contractx.ToolInput{Products: products, Constraint: constraint})
		products = filtered.Products
	}

	steps = append(steps, basex.StepComposeReply)
	reply := a.ComposeReply(ctx, a.systemPrompt, contextPrompt, query, products)

	return contractx.TurnRecord{
		Reply:         reply,
		Products:      products,
		WorkflowSteps: steps,
		Success:       found.Success,
	}
}

// alternativeQueryPrompt drives the single retry after an empty search.
const alternativeQueryPrompt = "A catalog search found nothing. Suggest one alternative " +
	"search phrase for the shopper's request: a short, generic product term. " +
	"Reply with the phrase only."

// alternativeQuery asks the model for a different search phrase; when the
// model cannot help, the shopper's own words are the alternative, unless
// they were already tried.
func (a *Agent) alternativeQuery(ctx context.Context, query, tried string) string {
	alt, err := a.Model.Complete(ctx, alternativeQueryPrompt, query)
	if err != nil || strings.TrimSpace(alt) == "" {
		alt = query
	}
	alt = strings.TrimSpace(strings.Trim(strings.TrimSpace(alt), `"`))
	if strings.EqualFold(alt, tried) {
		return ""
	}
	return alt
}

// rememberSignals extracts durable shopping signals from the turn into the
// session's user context.
func (a *Agent) rememberSignals(ctx context.Context, sessionID, query string, rec contractx.TurnRecord) {
	signals := make(map[string]any)

	if len(rec.Products) > 0 {
		signals["topic_of_interest"] = rec.Products[0].Name
	}

	lowered := strings.ToLower(query)
	for _, term := range []string{"cheap", "budget", "afford", "under "} {
		if strings.Contains(lowered, term) {
			signals["budget_sensitivity"] = "high"
			break
		}
	}
	for _, term := range []string{"urgent", "asap", "today", "right away"} {
		if strings.Contains(lowered, term) {
			signals["urgency"] = "high"
			break
		}
	}

	if len(signals) == 0 {
		return
	}
	if err := a.Store.UpdateContext(ctx, sessionID, signals); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("context signals not saved")
	}
}

// priceConstraint returns the text that should drive the result filter, or
// "" when neither the message nor the refined requirements carry one.
func priceConstraint(query, requirements string) string {
	for _, candidate := range []string{query, requirements} {
		lowered := strings.ToLower(candidate)
		for _, marker := range []string{
			"cheapest", "lowest", "most expensive", "highest", "priciest",
			"under ", "below ", "less than", "at most", "over ", "above ",
			"more than", "at least", "between ",
		} {
			if strings.Contains(lowered, marker) {
				return candidate
			}
		}
	}
	return ""
}
