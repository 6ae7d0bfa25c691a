// Package base carries behavior shared by the specialist agents: the
// conversation-context prompt, the SEARCH/CONVERSATION decision call,
// product list shaping, and turn persistence.
package base

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/alessalabs/concierge/agent/contract"
	sessionx "github.com/alessalabs/concierge/agent/session"
)

const (
	// historyDepth bounds how many recent messages feed the context prompt.
	historyDepth = 3

	// maxRecommended bounds how many products a single reply carries.
	maxRecommended = 5
)

const (
	StepConversation = "conversation"
	StepComposeReply = "compose_reply"
)

// Base is embedded by the specialist agents.
type Base struct {
	Model        contractx.LanguageModel
	Store        *sessionx.Store
	DecidePrompt string
}

// ContextPrompt renders the recent conversation plus accumulated user
// context into a compact prompt section. An empty session yields "".
func (b *Base) ContextPrompt(ctx context.Context, sessionID string) string {
	var sb strings.Builder

	history, err := b.Store.History(ctx, sessionID, historyDepth)
	if err != nil && err != sessionx.ErrInvalidSession {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("history unavailable for context prompt")
	}
	for _, msg := range history {
		sb.WriteString(string(msg.Role))
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}

	userContext, err := b.Store.Context(ctx, sessionID)
	if err == nil && len(userContext) > 0 {
		sb.WriteString("Known about the user:\n")
		for _, key := range sortedKeys(userContext) {
			fmt.Fprintf(&sb, "- %s: %v\n", key, userContext[key])
		}
	}

	return strings.TrimSpace(sb.String())
}

// DecideToolUse asks the model whether the message needs a catalog search.
// The error is surfaced so each agent can apply its own failure default.
func (b *Base) DecideToolUse(ctx context.Context, contextPrompt, query string) (bool, error) {
	user := "Message: " + query
	if contextPrompt != "" {
		user = contextPrompt + "\n\n" + user
	}

	raw, err := b.Model.Complete(ctx, b.DecidePrompt, user)
	if err != nil {
		return false, err
	}

	verdict := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.Contains(verdict, "SEARCH"):
		return true, nil
	case strings.Contains(verdict, "CONVERSATION"):
		return false, nil
	}
	return false, fmt.Errorf("%w: unrecognized tool verdict %q", contractx.ErrModelInvoke, raw)
}

// Converse produces a plain conversational reply grounded in the context
// prompt; no catalog involvement.
func (b *Base) Converse(ctx context.Context, systemPrompt, contextPrompt, query string) (string, error) {
	user := "Message: " + query
	if contextPrompt != "" {
		user = "Conversation so far:\n" + contextPrompt + "\n\n" + user
	}
	return b.Model.Complete(ctx, systemPrompt, user)
}

// ComposeReply presents products to the user. The listing itself is always
// the deterministic template render; the model only contributes a short
// lead-in and never restates product facts.
func (b *Base) ComposeReply(ctx context.Context, systemPrompt, contextPrompt, query string, products []contractx.Product) string {
	if len(products) == 0 {
		reply, err := b.Converse(ctx, systemPrompt, contextPrompt,
			query+"\n\n(No matching products were found; say so and ask what else would help.)")
		if err != nil {
			return "I couldn't find matching products right now. Could you describe what you're looking for in a different way?"
		}
		return reply
	}

	listing := Listing(products)

	user := "Message: " + query + "\n\nWrite one short lead-in sentence for the product list " +
		"that follows your reply. Do not name products or prices; the list is appended separately."
	if contextPrompt != "" {
		user = "Conversation so far:\n" + contextPrompt + "\n\n" + user
	}

	intro, err := b.Model.Complete(ctx, systemPrompt, user)
	if err != nil {
		log.Warn().Err(err).Msg("lead-in composition failed, using plain listing")
		intro = "Here is what I found:"
	}
	return strings.TrimSpace(intro) + "\n\n" + listing
}

// PersistTurn appends the user message and the assistant reply to the
// session, carrying the product snapshot and workflow trace.
func (b *Base) PersistTurn(ctx context.Context, sessionID, query string, agentType contractx.AgentType, rec contractx.TurnRecord) {
	at := rec.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	if err := b.Store.Append(ctx, sessionID, sessionx.Message{
		Role:      sessionx.RoleUser,
		Content:   query,
		Timestamp: at,
	}); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("persist user turn failed")
		return
	}
	if err := b.Store.Append(ctx, sessionID, sessionx.Message{
		Role:          sessionx.RoleAssistant,
		Content:       rec.Reply,
		Timestamp:     at,
		AgentType:     agentType,
		Products:      rec.Products,
		WorkflowSteps: rec.WorkflowSteps,
	}); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("persist assistant turn failed")
	}
}

// DedupeTop removes duplicate products by name, keeping first occurrences,
// bounded to maxRecommended.
func DedupeTop(products []contractx.Product) []contractx.Product {
	seen := make(map[string]struct{}, len(products))
	var kept []contractx.Product
	for _, p := range products {
		key := strings.ToLower(strings.TrimSpace(p.Name))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, p)
		if len(kept) == maxRecommended {
			break
		}
	}
	return kept
}

// Listing renders products as a numbered, deterministic text block.
func Listing(products []contractx.Product) string {
	if len(products) == 0 {
		return "(no matching products)"
	}

	var sb strings.Builder
	for i, p := range products {
		fmt.Fprintf(&sb, "%d. %s", i+1, p.Name)
		if p.PriceKnown {
			fmt.Fprintf(&sb, " - %.2f %s", p.Price, p.Currency)
		} else {
			sb.WriteString(" - price on request")
		}
		if p.URL != "" {
			fmt.Fprintf(&sb, " - %s", p.URL)
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
