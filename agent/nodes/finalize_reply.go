package node

import (
	"fmt"
	"strings"

	contractx "github.com/alessalabs/concierge/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Turn.Reply)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: specialist returned empty reply", contractx.ErrValidation)
	}

	return GraphOutput{
		Result: contractx.ChatResult{
			Reply:           reply,
			Products:        in.Turn.Products,
			WorkflowSteps:   in.Turn.WorkflowSteps,
			Success:         in.Turn.Success,
			AgentType:       in.Decision.Agent,
			RoutingDecision: in.Decision.String(),
			SessionID:       in.SessionID,
		},
	}, nil
}
