package orchestrator

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/alessalabs/concierge/agent/contract"
)

type fixedRouter struct {
	decision contractx.RoutingDecision
}

func (r *fixedRouter) Decide(ctx context.Context, query string) contractx.RoutingDecision {
	return r.decision
}

type recordingSpecialist struct {
	agentType contractx.AgentType
	record    contractx.TurnRecord
	lastQuery string
	lastID    string
}

func (s *recordingSpecialist) Type() contractx.AgentType { return s.agentType }

func (s *recordingSpecialist) Handle(ctx context.Context, sessionID, query string) contractx.TurnRecord {
	s.lastID = sessionID
	s.lastQuery = query
	return s.record
}

func newService(t *testing.T, router contractx.Router, specialists ...contractx.Specialist) *Service {
	t.Helper()
	svc, err := New(router, specialists)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return svc
}

func TestHandleMessageDispatchesByDecision(t *testing.T) {
	t.Parallel()

	sales := &recordingSpecialist{
		agentType: contractx.AgentTypeSales,
		record:    contractx.TurnRecord{Reply: "sales here", Success: true},
	}
	medical := &recordingSpecialist{
		agentType: contractx.AgentTypeMedical,
		record:    contractx.TurnRecord{Reply: "medical here", Success: true},
	}
	router := &fixedRouter{decision: contractx.RoutingDecision{
		Agent:  contractx.AgentTypeMedical,
		Source: contractx.SourceHeuristic,
	}}
	svc := newService(t, router, sales, medical)

	got, err := svc.HandleMessage(context.Background(), contractx.ChatRequest{
		SessionID: "s1",
		Text:      "my back hurts",
	})
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if got.Reply != "medical here" || got.AgentType != contractx.AgentTypeMedical {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.RoutingDecision != "medical (heuristic)" {
		t.Fatalf("routing decision = %q", got.RoutingDecision)
	}
	if got.SessionID != "s1" {
		t.Fatalf("session id = %q", got.SessionID)
	}
	if medical.lastQuery != "my back hurts" || sales.lastQuery != "" {
		t.Fatalf("dispatch went to the wrong specialist")
	}
}

func TestHandleMessageRejectsEmptyText(t *testing.T) {
	t.Parallel()

	svc := newService(t,
		&fixedRouter{decision: contractx.RoutingDecision{Agent: contractx.AgentTypeSales}},
		&recordingSpecialist{agentType: contractx.AgentTypeSales, record: contractx.TurnRecord{Reply: "x"}},
	)

	_, err := svc.HandleMessage(context.Background(), contractx.ChatRequest{SessionID: "s1", Text: "   "})
	if !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("HandleMessage() error = %v, want ErrInvalidMessage", err)
	}
}

func TestHandleMessageRejectsEmptySession(t *testing.T) {
	t.Parallel()

	svc := newService(t,
		&fixedRouter{decision: contractx.RoutingDecision{Agent: contractx.AgentTypeSales}},
		&recordingSpecialist{agentType: contractx.AgentTypeSales, record: contractx.TurnRecord{Reply: "x"}},
	)

	_, err := svc.HandleMessage(context.Background(), contractx.ChatRequest{Text: "hello"})
	if !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("HandleMessage() error = %v, want ErrInvalidSession", err)
	}
}

func TestHandleMessageMissingSpecialist(t *testing.T) {
	t.Parallel()

	svc := newService(t,
		&fixedRouter{decision: contractx.RoutingDecision{Agent: contractx.AgentTypeMedical}},
		&recordingSpecialist{agentType: contractx.AgentTypeSales, record: contractx.TurnRecord{Reply: "x"}},
	)

	_, err := svc.HandleMessage(context.Background(), contractx.ChatRequest{SessionID: "s1", Text: "hello"})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("HandleMessage() error = %v, want ErrValidation", err)
	}
}

func TestHandleMessageEmptyReplyFails(t *testing.T) {
	t.Parallel()

	svc := newService(t,
		&fixedRouter{decision: contractx.RoutingDecision{Agent: contractx.AgentTypeSales}},
		&recordingSpecialist{agentType: contractx.AgentTypeSales, record: contractx.TurnRecord{}},
	)

	_, err := svc.HandleMessage(context.Background(), contractx.ChatRequest{SessionID: "s1", Text: "hello"})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("HandleMessage() error = %v, want ErrValidation", err)
	}
}

func TestNewRequiresRouterAndSpecialists(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, []contractx.Specialist{&recordingSpecialist{agentType: contractx.AgentTypeSales}}); err == nil {
		t.Fatal("expected error for nil router")
	}
	if _, err := New(&fixedRouter{}, nil); err == nil {
		t.Fatal("expected error for empty specialists")
	}
}
