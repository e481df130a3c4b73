package bot

import (
	"context"
	"fmt"

	"github.com/lox/siliconcasino/internal/session"
)

// PlayHand starts a hand on r and asks agents for actions until it
// settles. Every seat dealt in must have an agent keyed by its agent ID.
func PlayHand(ctx context.Context, r *session.TableRunner, agents map[string]Agent) (session.HandInfo, error) {
	info, err := r.StartHand(ctx)
	if err != nil || info.Complete {
		return info, err
	}

	for {
		public, err := r.State(ctx, "")
		if err != nil {
			return info, err
		}
		if public.Hand == nil || public.Hand.HandID != info.ID {
			return info, nil
		}
		agentID := public.Table.Seats[public.Hand.ActionOn].AgentID
		agent, ok := agents[agentID]
		if !ok {
			return info, fmt.Errorf("no agent for %q on seat %d", agentID, public.Hand.ActionOn)
		}

		snap, err := r.State(ctx, agentID)
		if err != nil {
			return info, err
		}
		action, amount := agent.Decide(snap)
		continues, err := r.Act(ctx, agentID, action, amount)
		if err != nil {
			return info, fmt.Errorf("%s chose %s %d: %w", agentID, action, amount, err)
		}
		if !continues {
			return info, nil
		}
	}
}
