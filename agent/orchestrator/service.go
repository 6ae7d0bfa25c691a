// Package orchestrator runs one chat turn end to end: validate, route,
// dispatch to a specialist, finalize. The turn graph is compiled once at
// construction.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/alessalabs/concierge/agent/contract"
	nodex "github.com/alessalabs/concierge/agent/nodes"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

type Service struct {
	router      contractx.Router
	specialists map[contractx.AgentType]contractx.Specialist

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(router contractx.Router, specialists []contractx.Specialist) (*Service, error) {
	if router == nil {
		return nil, errors.New("router is required")
	}
	if len(specialists) == 0 {
		return nil, errors.New("at least one specialist is required")
	}

	byType := make(map[contractx.AgentType]contractx.Specialist, len(specialists))
	for _, sp := range specialists {
		if sp == nil {
			continue
		}
		byType[sp.Type()] = sp
	}

	s := &Service{
		router:      router,
		specialists: byType,
		now:         time.Now,
	}

	graphRunner, err := s.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.graphRunner = graphRunner

	return s, nil
}

// HandleMessage processes one user message and returns the structured turn
// result.
func (s *Service) HandleMessage(ctx context.Context, req contractx.ChatRequest) (contractx.ChatResult, error) {
	out, err := s.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: req.SessionID,
		Text:      req.Text,
	})
	if err != nil {
		return contractx.ChatResult{}, err
	}
	return out.Result, nil
}
