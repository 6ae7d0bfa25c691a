package node

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/alessalabs/concierge/agent/contract"
)

func RouteQuery(ctx context.Context, in *GraphState, router contractx.Router) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.Decision = router.Decide(ctx, in.Text)
	log.Debug().
		Str("session_id", in.SessionID).
		Str("agent", string(in.Decision.Agent)).
		Str("source", string(in.Decision.Source)).
		Msg("query routed")
	return in, nil
}
