package contract

import "context"

// LanguageModel is the opaque text collaborator. Implementations may fail
// (timeout, missing credentials); callers fall back to documented defaults
// and never let the failure escape a public operation.
type LanguageModel interface {
	Complete(ctx context.Context, system string, user string) (string, error)
}

// CatalogProvider resolves a search string to candidate products. Results
// are never assumed relevant; the core re-filters.
type CatalogProvider interface {
	Search(ctx context.Context, query string) ([]Product, error)
}

// Tool is one stage of the pipeline: plain data in, structured result out,
// never an error through the boundary.
type Tool interface {
	Name() string
	Run(ctx context.Context, in ToolInput) ToolOutput
}

// Specialist handles one routed turn end to end, including persisting the
// turn into the session store.
type Specialist interface {
	Type() AgentType
	Handle(ctx context.Context, sessionID string, query string) TurnRecord
}

type Router interface {
	Decide(ctx context.Context, query string) RoutingDecision
}
