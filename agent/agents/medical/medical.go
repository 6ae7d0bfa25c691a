// Package medical implements the health-concern specialist. It maps
// described symptoms to home-equipment categories, searches the catalog for
// those, and always closes with a professional-care reminder.
package medical

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

const (
	stepSymptomAnalysis = "symptom_analysis"

	// maxEquipmentQueries bounds catalog lookups per turn.
	maxEquipmentQueries = 3

	disclaimer = "Please consult a healthcare professional for medical advice."
)

// Agent is the medical-equipment specialist.
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

func (a *Agent) Type() contractx.AgentType { return contractx.AgentTypeMedical }

// Handle runs one medical turn. When the SEARCH/CONVERSATION decision cannot
// be reached the turn stays conversational; suggesting equipment on a guess
// is worse than not suggesting it.
func (a *Agent) Handle(ctx context.Context, sessionID, query string) contractx.TurnRecord {
	contextPrompt := a.ContextPrompt(ctx, sessionID)

	useTools, err := a.DecideToolUse(ctx, contextPrompt, query)
	if err != nil {
		log.Warn().Err(err).Msg("tool decision failed, staying conversational")
		useTools = false
	}

	var rec contractx.TurnRecord
	if useTools {
		rec = a.recommend(ctx, contextPrompt, query)
	} else {
		rec = a.converse(ctx, contextPrompt, query)
	}
	rec.Reply = withDisclaimer(rec.Reply)
	rec.At = time.Now().UTC()

	a.rememberSignals(ctx, sessionID, query)
	a.PersistTurn(ctx, sessionID, query, contractx.AgentTypeMedical, rec)
	return rec
}

// rememberSignals extracts durable health signals from the message into the
// session's user context.
func (a *Agent) rememberSignals(ctx context.Context, sessionID, query string) {
	signals := make(map[string]any)
	lowered := strings.ToLower(query)

	var symptoms []string
	for _, entry := range symptomEquipment {
		if strings.Contains(lowered, entry.symptom) {
			symptoms = append(symptoms, entry.symptom)
		}
	}
	if len(symptoms) > 0 {
		signals["current_symptoms"] = strings.Join(symptoms, ", ")
	}

	for _, term := range []string{"severe", "unbearable", "can't move", "cannot move", "worst"} {
		if strings.Contains(lowered, term) {
			signals["severity"] = "high"
			break
		}
	}
	for _, term := range []string{"weeks", "months", "years", "chronic", "long time"} {
		if strings.Contains(lowered, term) {
			signals["duration"] = "long-term"
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

func (a *Agent) converse(ctx context.Context, contextPrompt, query string) contractx.TurnRecord {
	steps := []string{basex.StepConversation}

	reply, err := a.Converse(ctx, a.systemPrompt, contextPrompt, query)
	if err != nil {
		log.Warn().Err(err).Msg("medical conversation failed")
		return contractx.TurnRecord{
			Reply:         "I'm sorry, I'm having trouble responding right now.",
			WorkflowSteps: steps,
			Success:       false,
		}
	}
	return contractx.TurnRecord{Reply: reply, WorkflowSteps: steps, Success: true}
}

func (a *Agent) recommend(ctx context.Context, contextPrompt, query string) contractx.TurnRecord {
	steps := []string{stepSymptomAnalysis}

	queries := equipmentQueries(query)
	if len(queries) == 0 {
		rec := a.converse(ctx, contextPrompt, query)
		rec.WorkflowSteps = append(steps, rec.WorkflowSteps...)
		return rec
	}

	steps = append(steps, toolx.NameSearch)
	var (
		merged   []contractx.Product
		searched bool
	)
	for _, q := range queries {
		out := a.tools.Search.Run(ctx, contractx.ToolInput{Query: q})
		if out.Success {
			searched = true
		}
		merged = append(merged, out.Products...)
	}

	products := basex.DedupeTop(merged)

	steps = append(steps, basex.StepComposeReply)
	reply := a.ComposeReply(ctx, a.systemPrompt, contextPrompt, query, products)

	return contractx.TurnRecord{
		Reply:         reply,
		Products:      products,
		WorkflowSteps: steps,
		Success:       searched,
	}
}

// symptomEquipment maps symptom phrases to catalog query candidates.
// Matching is substring on the lowered message; first hits win.
var symptomEquipment = []struct {
	symptom string
	queries []string
}{
	{"back pain", []string{"lumbar support cushion", "orthopedic back brace"}},
	{"knee", []string{"knee brace", "knee support"}},
	{"ankle", []string{"ankle brace", "ankle support"}},
	{"wrist", []string{"wrist brace", "wrist splint"}},
	{"neck", []string{"cervical collar", "neck support pillow"}},
	{"walk", []string{"walker", "walking cane"}},
	{"mobility", []string{"wheelchair", "walker"}},
	{"wheelchair", []string{"wheelchair"}},
	{"fall", []string{"grab bar", "walker"}},
	{"balance", []string{"walking cane", "grab bar"}},
	{"shower", []string{"shower chair", "grab bar"}},
	{"bath", []string{"shower chair", "bath lift"}},
	{"bed", []string{"hospital bed", "bed rail"}},
	{"pressure sore", []string{"pressure relief mattress"}},
	{"blood pressure", []string{"blood pressure monitor"}},
	{"diabetes", []string{"glucose monitor"}},
	{"sugar", []string{"glucose monitor"}},
	{"breath", []string{"oxygen concentrator", "nebulizer"}},
	{"asthma", []string{"nebulizer"}},
	{"oxygen", []string{"oxygen concentrator", "pulse oximeter"}},
	{"recovery", []string{"walker", "shower chair"}},
	{"surgery", []string{"walker", "toilet seat riser"}},
	{"elderly", []string{"walker", "grab bar"}},
	{"arthritis", []string{"compression gloves", "jar opener aid"}},
}

// equipmentQueries derives up to maxEquipmentQueries catalog queries from a
// symptom description, deduplicated, in table order.
func equipmentQueries(query string) []string {
	lowered := strings.ToLower(query)

	seen := make(map[string]struct{})
	var queries []string
	for _, entry := range symptomEquipment {
		if !strings.Contains(lowered, entry.symptom) {
			continue
		}
		for _, q := range entry.queries {
			if _, dup := seen[q]; dup {
				continue
			}
			seen[q] = struct{}{}
			queries = append(queries, q)
			if len(queries) == maxEquipmentQueries {
				return queries
			}
		}
	}
	return queries
}

// withDisclaimer guarantees the professional-care reminder closes the reply.
func withDisclaimer(reply string) string {
	if strings.Contains(strings.ToLower(reply), "healthcare professional") {
		return reply
	}
	trimmed := strings.TrimSpace(reply)
	if trimmed == "" {
		return disclaimer
	}
	return trimmed + "\n\n" + disclaimer
}
