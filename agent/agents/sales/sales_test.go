package sales

import (
	"context"
	"errors"
	"strings"
	"testing"

	cachex "github.com/alessalabs/concierge/agent/cache"
	contractx "github.com/alessalabs/concierge/agent/contract"
	sessionx "github.com/alessalabs/concierge/agent/session"
	toolx "github.com/alessalabs/concierge/agent/tool"
)

const (
	salesPrompt  = "sales-system"
	decidePrompt = "decide-system"
	refinePrompt = "refine-system"
)

// scriptedModel answers by system prompt so one fake serves the decision,
// refinement, and composition calls.
type scriptedModel struct {
	bySystem map[string]string
	err      error
}

func (m *scriptedModel) Complete(ctx context.Context, system, user string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if resp, ok := m.bySystem[system]; ok {
		return resp, nil
	}
	return "", errors.New("unscripted prompt")
}

type byQueryProvider struct {
	byQuery map[string][]contractx.Product
	queries []string
}

func (p *byQueryProvider) Search(ctx context.Context, query string) ([]contractx.Product, error) {
	p.queries = append(p.queries, query)
	return p.byQuery[strings.ToLower(query)], nil
}

func product(name string, price float64) contractx.Product {
	return contractx.Product{Name: name, Price: price, Currency: "KWD", PriceKnown: true}
}

func newAgent(model contractx.LanguageModel, provider contractx.CatalogProvider) (*Agent, *sessionx.Store) {
	store := sessionx.NewStore(sessionx.Config{})
	tools := &toolx.Set{
		Refine: toolx.NewRefine(model, refinePrompt),
		Search: toolx.NewSearch(provider, cachex.New(cachex.Config{})),
		Filter: toolx.NewFilter(),
	}
	return New(model, store, tools, salesPrompt, decidePrompt), store
}

func TestHandleConversationalTurn(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{bySystem: map[string]string{
		decidePrompt: "CONVERSATION",
		salesPrompt:  "Hello! How can I help you today?",
	}}
	agent, store := newAgent(model, &byQueryProvider{})

	rec := agent.Handle(context.Background(), "s1", "hi there")
	if !rec.Success {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if len(rec.WorkflowSteps) != 1 || rec.WorkflowSteps[0] != "conversation" {
		t.Fatalf("workflow = %v", rec.WorkflowSteps)
	}
	if len(rec.Products) != 0 {
		t.Fatalf("products = %v, want none", rec.Products)
	}

	history, _ := store.History(context.Background(), "s1", 10)
	if len(history) != 2 {
		t.Fatalf("persisted %d messages, want 2", len(history))
	}
	if history[1].AgentType != contractx.AgentTypeSales {
		t.Fatalf("assistant agent type = %q", history[1].AgentType)
	}
}

func TestHandleShoppingTurn(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{bySystem: map[string]string{
		decidePrompt: "SEARCH",
		refinePrompt: "PRODUCT: wheelchair\nREQUIREMENTS: None\nSEARCH_QUERY: wheelchair",
		salesPrompt:  "We have two great wheelchairs for you!",
	}}
	provider := &byQueryProvider{byQuery: map[string][]contractx.Product{
		"wheelchair": {
			product("Standard Wheelchair", 120),
			product("Electric Wheelchair", 950),
		},
	}}
	agent, store := newAgent(model, provider)

	rec := agent.Handle(context.Background(), "s1", "I'm looking for a wheelchair")
	if !rec.Success {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if len(rec.Products) != 2 {
		t.Fatalf("products = %v", rec.Products)
	}
	wantSteps := []string{toolx.NameRefine, toolx.NameSearch, "compose_reply"}
	if len(rec.WorkflowSteps) != len(wantSteps) {
		t.Fatalf("workflow = %v, want %v", rec.WorkflowSteps, wantSteps)
	}
	for i := range wantSteps {
		if rec.WorkflowSteps[i] != wantSteps[i] {
			t.Fatalf("workflow = %v, want %v", rec.WorkflowSteps, wantSteps)
		}
	}

	got, _ := store.Context(context.Background(), "s1")
	if got["topic_of_interest"] != "Standard Wheelchair" {
		t.Fatalf("topic_of_interest = %v", got["topic_of_interest"])
	}
}

func TestHandleRefineSkipFallsBackToConversation(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{bySystem: map[string]string{
		decidePrompt: "SEARCH",
		refinePrompt: "PRODUCT: None",
		salesPrompt:  "Happy to chat!",
	}}
	provider := &byQueryProvider{}
	agent, _ := newAgent(model, provider)

	rec := agent.Handle(context.Background(), "s1", "tell me a joke")
	if !rec.Success || rec.Reply != "Happy to chat!" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if len(provider.queries) != 0 {
		t.Fatalf("catalog searched %v, want no searches", provider.queries)
	}
	if rec.WorkflowSteps[0] != toolx.NameRefine {
		t.Fatalf("workflow = %v", rec.WorkflowSteps)
	}
}

func TestHandleRetriesWithAlternativeQuery(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{bySystem: map[string]string{
		decidePrompt:           "SEARCH",
		refinePrompt:           "PRODUCT: mobility aid\nSEARCH_QUERY: mobility aid",
		alternativeQueryPrompt: "walker",
		salesPrompt:            "Found it!",
	}}
	provider := &byQueryProvider{byQuery: map[string][]contractx.Product{
		"walker": {product("Folding Walker", 45)},
	}}
	agent, _ := newAgent(model, provider)

	rec := agent.Handle(context.Background(), "s1", "something to help my mom move around")
	if len(rec.Products) != 1 || rec.Products[0].Name != "Folding Walker" {
		t.Fatalf("products = %v", rec.Products)
	}

	hasRetry := false
	for _, step := range rec.WorkflowSteps {
		if step == "alternative_search" {
			hasRetry = true
		}
	}
	if !hasRetry {
		t.Fatalf("workflow = %v, want alternative_search", rec.WorkflowSteps)
	}
}

func TestHandleAppliesPriceFilter(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{bySystem: map[string]string{
		decidePrompt: "SEARCH",
		refinePrompt: "PRODUCT: wheelchair\nSEARCH_QUERY: wheelchair",
		salesPrompt:  "Here are the cheapest options.",
	}}
	provider := &byQueryProvider{byQuery: map[string][]contractx.Product{
		"wheelchair": {
			product("Electric Wheelchair", 950),
			product("Standard Wheelchair", 120),
			product("Basic Wheelchair", 85),
			product("Lightweight Wheelchair", 310),
		},
	}}
	agent, _ := newAgent(model, provider)

	rec := agent.Handle(context.Background(), "s1", "show me the cheapest wheelchair")
	if len(rec.Products) != 3 {
		t.Fatalf("products = %v", rec.Products)
	}
	if rec.Products[0].Price != 85 {
		t.Fatalf("cheapest first, got %v", rec.Products[0])
	}

	hasFilter := false
	for _, step := range rec.WorkflowSteps {
		if step == toolx.NameFilter {
			hasFilter = true
		}
	}
	if !hasFilter {
		t.Fatalf("workflow = %v, want %s", rec.WorkflowSteps, toolx.NameFilter)
	}
}

func TestHandleDecideFailureStaysConversational(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{err: errors.New("model down")}
	provider := &byQueryProvider{byQuery: map[string][]contractx.Product{
		"wheelchair": {product("Standard Wheelchair", 120)},
	}}
	agent, _ := newAgent(model, provider)

	rec := agent.Handle(context.Background(), "s1", "wheelchair")
	if rec.Success {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if len(provider.queries) != 0 {
		t.Fatalf("catalog searched %v, want no searches", provider.queries)
	}
	if strings.TrimSpace(rec.Reply) == "" {
		t.Fatal("fallback reply is empty")
	}
}

func TestHandleModelDownAlternativeIsVerbatim(t *testing.T) {
	t.Parallel()

	// Decision works, everything after degrades: refinement falls back to
	// the verbatim query, and the alternative retry has nothing new to try.
	model := &scriptedModel{bySystem: map[string]string{
		decidePrompt: "SEARCH",
	}}
	provider := &byQueryProvider{}
	agent, _ := newAgent(model, provider)

	rec := agent.Handle(context.Background(), "s1", "hover chair")
	if len(provider.queries) != 1 {
		t.Fatalf("catalog searched %v, want exactly one search", provider.queries)
	}
	// No results is a normal outcome, not a failure.
	if !rec.Success || len(rec.Products) != 0 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestHandleBudgetSignalSaved(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{bySystem: map[string]string{
		decidePrompt: "CONVERSATION",
		salesPrompt:  "Sure, we have budget-friendly options.",
	}}
	agent, store := newAgent(model, &byQueryProvider{})

	agent.Handle(context.Background(), "s1", "something cheap please")
	got, _ := store.Context(context.Background(), "s1")
	if got["budget_sensitivity"] != "high" {
		t.Fatalf("budget_sensitivity = %v", got["budget_sensitivity"])
	}
}
