package tool

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/alessalabs/concierge/agent/contract"
)

type fakeModel struct {
	response string
	err      error
	lastUser string
}

func (m *fakeModel) Complete(ctx context.Context, system, user string) (string, error) {
	m.lastUser = user
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func TestRefineParsesStructuredResponse(t *testing.T) {
	t.Parallel()

	model := &fakeModel{response: "PRODUCT: wheelchair\nREQUIREMENTS: foldable, under 200\nSEARCH_QUERY: folding wheelchair"}
	out := NewRefine(model, "system").Run(context.Background(), contractx.ToolInput{
		Query: "I need a foldable wheelchair under 200",
	})

	if !out.Success {
		t.Fatalf("unexpected output: %+v", out)
	}
	if out.Product != "wheelchair" || out.SearchQuery != "folding wheelchair" {
		t.Fatalf("unexpected fields: %+v", out)
	}
	if out.Requirements != "foldable, under 200" {
		t.Fatalf("requirements = %q", out.Requirements)
	}
}

func TestRefineNoneProductSkipsSearch(t *testing.T) {
	t.Parallel()

	model := &fakeModel{response: "PRODUCT: None\nREQUIREMENTS: None\nSEARCH_QUERY: None"}
	out := NewRefine(model, "system").Run(context.Background(), contractx.ToolInput{Query: "thanks, bye"})

	if !out.Success {
		t.Fatalf("unexpected output: %+v", out)
	}
	if out.Product != contractx.RefineSkipSentinel {
		t.Fatalf("product = %q, want skip sentinel", out.Product)
	}
	if out.SearchQuery != "" {
		t.Fatalf("search query = %q, want empty", out.SearchQuery)
	}
}

func TestRefineModelFaultFallsBackToVerbatim(t *testing.T) {
	t.Parallel()

	model := &fakeModel{err: errors.New("timeout")}
	out := NewRefine(model, "system").Run(context.Background(), contractx.ToolInput{Query: "walking cane"})

	if out.Success {
		t.Fatal("expected Success=false on model fault")
	}
	if out.SearchQuery != "walking cane" {
		t.Fatalf("search query = %q, want verbatim", out.SearchQuery)
	}
}

func TestRefineUnparseableFallsBackToVerbatim(t *testing.T) {
	t.Parallel()

	model := &fakeModel{response: "Sure! Here are some great options for you."}
	out := NewRefine(model, "system").Run(context.Background(), contractx.ToolInput{Query: "walking cane"})

	if out.Success {
		t.Fatal("expected Success=false on unparseable response")
	}
	if out.SearchQuery != "walking cane" {
		t.Fatalf("search query = %q, want verbatim", out.SearchQuery)
	}
}

func TestRefineMissingSearchQueryUsesProduct(t *testing.T) {
	t.Parallel()

	model := &fakeModel{response: "PRODUCT: blood pressure monitor\nREQUIREMENTS: None"}
	out := NewRefine(model, "system").Run(context.Background(), contractx.ToolInput{Query: "something to check my blood pressure"})

	if !out.Success || out.SearchQuery != "blood pressure monitor" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if out.Requirements != "" {
		t.Fatalf("requirements = %q, want empty", out.Requirements)
	}
}

func TestRefineIncludesConversationContext(t *testing.T) {
	t.Parallel()

	model := &fakeModel{response: "PRODUCT: walker\nSEARCH_QUERY: walker"}
	NewRefine(model, "system").Run(context.Background(), contractx.ToolInput{
		Query:   "the second one",
		Context: "user: show me walkers",
	})

	if model.lastUser == "" || !containsAny(model.lastUser, "show me walkers") {
		t.Fatalf("context not forwarded: %q", model.lastUser)
	}
}

func TestRefineNilModelFallsBack(t *testing.T) {
	t.Parallel()

	out := NewRefine(nil, "system").Run(context.Background(), contractx.ToolInput{Query: "crutches"})
	if out.Success || out.SearchQuery != "crutches" {
		t.Fatalf("unexpected output: %+v", out)
	}
}
