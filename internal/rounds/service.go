package rounds

import (
	"context"
	"errors"
	"log"

	"github.com/susu3304/pairbot/internal/pairing"
	"github.com/susu3304/pairbot/internal/store"
)

var (
	ErrNoRound       = errors.New("no round has been run yet")
	ErrAlreadyPaired = errors.New("already paired this round")
)

type Service struct {
	store  store.Store
	engine *pairing.Engine
	locks  *scopeLocks
}

func NewService(st store.Store, engine *pairing.Engine) *Service {
	if engine == nil {
		engine = pairing.NewEngine(nil)
	}
	return &Service{store: st, engine: engine, locks: newScopeLocks()}
}

type RoundRequest struct {
	Participants []string
	Fillers      []string
	// CarryLeftovers adds the previous round's leftovers to Participants.
	CarryLeftovers bool
}

// RunRound pairs a full round for the guild and persists both the updated
// history and the round. If only the round record failed to save the round is
// returned along with an error wrapping store.ErrRoundNotSaved.
func (s *Service) RunRound(ctx context.Context, guildID string, req RoundRequest) (*pairing.Round, error) {
	unlock := s.locks.lock(guildID)
	defer unlock()

	hist, err := store.LoadHistoryOrEmpty(ctx, s.store, guildID)
	if err != nil {
		return nil, err
	}

	participants := req.Participants
	if req.CarryLeftovers {
		prev, err := store.LoadRoundOrNil(ctx, s.store, guildID)
		if err != nil {
			return nil, err
		}
		if prev != nil && len(prev.Leftover) > 0 {
			participants = append(append([]string{}, prev.Leftover...), participants...)
		}
	}

	work := hist.Clone()
	round := s.engine.PairRound(work, participants, req.Fillers)

	if err := store.SaveState(ctx, s.store, guildID, work, &round); err != nil {
		if errors.Is(err, store.ErrRoundNotSaved) {
			log.Printf("rounds: guild %s history updated but round not saved: %v", guildID, err)
			return &round, err
		}
		return nil, err
	}

	log.Printf("rounds: guild %s paired %d pairs, %d leftover", guildID, len(round.Pairs), len(round.Leftover))
	return &round, nil
}

// PairMe pairs person with a leftover from the latest round, falling back to
// fillers. ok is false when nobody is free; that is not an error. It returns
// ErrAlreadyPaired when person already has a partner this round. As with
// RunRound, a store.ErrRoundNotSaved error comes with the partner that was
// recorded.
func (s *Service) PairMe(ctx context.Context, guildID, person string, fillers []string) (partner string, ok bool, err error) {
	unlock := s.locks.lock(guildID)
	defer unlock()

	round, err := store.LoadRoundOrNil(ctx, s.store, guildID)
	if err != nil {
		return "", false, err
	}
	if round == nil {
		// nothing run yet: only fillers can be drawn
		round = &pairing.Round{Pairs: []pairing.Pair{}, Leftover: []string{}}
	}
	if round.Contains(person) {
		return "", false, ErrAlreadyPaired
	}

	hist, err := store.LoadHistoryOrEmpty(ctx, s.store, guildID)
	if err != nil {
		return "", false, err
	}

	// fillers who already have a partner this round are not free
	var freeFillers []string
	for _, f := range fillers {
		if !round.Contains(f) {
			freeFillers = append(freeFillers, f)
		}
	}

	work := hist.Clone()
	partner, ok = s.engine.PairPerson(work, person, round.Leftover, freeFillers)
	if !ok {
		return "", false, nil
	}

	next := round.Clone()
	next.AddPair(person, partner)

	if err := store.SaveState(ctx, s.store, guildID, work, next); err != nil {
		if errors.Is(err, store.ErrRoundNotSaved) {
			log.Printf("rounds: guild %s history updated but round not saved: %v", guildID, err)
			return partner, true, err
		}
		return "", false, err
	}

	log.Printf("rounds: guild %s paired %s with %s", guildID, person, partner)
	return partner, true, nil
}

// LatestRound returns the most recent round, or ErrNoRound.
func (s *Service) LatestRound(ctx context.Context, guildID string) (*pairing.Round, error) {
	round, err := store.LoadRoundOrNil(ctx, s.store, guildID)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, ErrNoRound
	}
	return round, nil
}

// PartnerCounts returns how many times person has been paired with each partner.
func (s *Service) PartnerCounts(ctx context.Context, guildID, person string) (map[string]int, error) {
	unlock := s.locks.lock(guildID)
	defer unlock()

	hist, err := store.LoadHistoryOrEmpty(ctx, s.store, guildID)
	if err != nil {
		return nil, err
	}
	return hist.Counts(person), nil
}
