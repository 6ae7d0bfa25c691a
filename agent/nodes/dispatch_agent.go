package node

import (
	"context"
	"fmt"

	contractx "github.com/alessalabs/concierge/agent/contract"
)

func DispatchAgent(ctx context.Context, in *GraphState, specialists map[contractx.AgentType]contractx.Specialist) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	specialist, ok := specialists[in.Decision.Agent]
	if !ok {
		return nil, fmt.Errorf("%w: no specialist for agent=%s", contractx.ErrValidation, in.Decision.Agent)
	}

	in.Turn = specialist.Handle(ctx, in.SessionID, in.Text)
	return in, nil
}
