package bot

import (
	"truf/internal/app"
	"truf/internal/domain"
)

// Act performs at most one pending move by any seated bot: a bid-type
// selection, a bid card, a Pas mode choice or a trick play. It reports
// whether a move was made; transports call it repeatedly to drain bot turns.
func Act(svc *app.Service, g *domain.Game, agents map[string]*Agent) ([]app.Event, bool, error) {
	switch g.Phase {
	case domain.PhaseBidding:
		if g.GameMode == domain.ModePas {
			if g.BidWinner == nil {
				return nil, false, nil
			}
			agent, ok := agents[g.BidWinner.ID]
			if !ok {
				return nil, false, nil
			}
			events, err := svc.ChooseGameMode(g, agent.ID, agent.ChooseGameMode())
			if err != nil {
				return nil, false, err
			}
			return events, true, nil
		}

		for _, p := range g.Players {
			agent, ok := agents[p.ID]
			if !ok {
				continue
			}
			if p.BidType == domain.BidUnset {
				events, err := svc.PlaceBidType(g, agent.ID, agent.ChooseBidType())
				if err != nil {
					return nil, false, err
				}
				return events, true, nil
			}
			card, ok := agent.ChooseBidCard(p.Hand)
			if !ok {
				continue
			}
			events, err := svc.PlayBidCard(g, agent.ID, card)
			if err == app.ErrBidQuotaExceeded {
				continue // this bot is done bidding
			}
			if err != nil {
				return nil, false, err
			}
			return events, true, nil
		}

	case domain.PhasePlaying:
		if g.CurrentTurn == nil {
			return nil, false, nil
		}
		agent, ok := agents[g.CurrentTurn.ID]
		if !ok {
			return nil, false, nil
		}
		player, _ := g.PlayerByID(agent.ID)
		card, ok := agent.ChooseTrickCard(g, player)
		if !ok {
			return nil, false, nil
		}
		events, err := svc.PlayTrickCard(g, agent.ID, card)
		if err != nil {
			return nil, false, err
		}
		return events, true, nil
	}

	return nil, false, nil
}
