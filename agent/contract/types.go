package contract

import "time"

type AgentType string

const (
	AgentTypeSales   AgentType = "sales"
	AgentTypeMedical AgentType = "medical"
)

// DecisionSource records which layer of the router produced a decision.
type DecisionSource string

const (
	SourceHeuristic DecisionSource = "heuristic"
	SourceModel     DecisionSource = "model"
	SourceDefault   DecisionSource = "default-fallback"
)

type RoutingDecision struct {
	Agent  AgentType      `json:"agent"`
	Source DecisionSource `json:"source"`
}

func (d RoutingDecision) String() string {
	return string(d.Agent) + " (" + string(d.Source) + ")"
}

// Product is always produced by the Catalog Provider; the core never
// fabricates one.
type Product struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	URL      string  `json:"url"`
	Vendor   string  `json:"vendor,omitempty"`

	// PriceKnown is false when the provider could not supply a parseable
	// price. Such products sort last and are never filtered out.
	PriceKnown bool `json:"price_known"`
}

type ChatRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
}

type ChatResult struct {
	Reply           string    `json:"reply"`
	Products        []Product `json:"products"`
	WorkflowSteps   []string  `json:"workflow_steps"`
	Success         bool      `json:"success"`
	AgentType       AgentType `json:"agent_type"`
	RoutingDecision string    `json:"routing_decision"`
	SessionID       string    `json:"session_id"`
}

// ToolInput is the plain-data input shared by the closed Tool set. A tool
// reads only the fields it needs.
type ToolInput struct {
	Query      string    `json:"query,omitempty"`
	Context    string    `json:"context,omitempty"`
	Products   []Product `json:"products,omitempty"`
	Constraint string    `json:"constraint,omitempty"`
}

// ToolOutput is a structured result. Success=false never means a fault
// escaped the tool; it means the tool degraded to its documented fallback.
type ToolOutput struct {
	Success  bool      `json:"success"`
	Products []Product `json:"products,omitempty"`
	Count    int       `json:"count,omitempty"`

	// Refine fields.
	Product      string `json:"product,omitempty"`
	Requirements string `json:"requirements,omitempty"`
	SearchQuery  string `json:"search_query,omitempty"`

	// Filter fields.
	FilterType string `json:"filter_type,omitempty"`
}

// RefineSkipSentinel is what the refine tool reports in Product when the
// model judged the query not product-related; callers skip search on it.
const RefineSkipSentinel = "none"

// TurnRecord is what a specialist hands back to be persisted and returned
// through the transport.
type TurnRecord struct {
	Reply         string
	Products      []Product
	WorkflowSteps []string
	Success       bool
	At            time.Time
}
