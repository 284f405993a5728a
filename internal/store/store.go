package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/susu3304/pairbot/internal/pairing"
)

// ErrNotFound means nothing has been saved for the scope yet.
var ErrNotFound = errors.New("no saved state")

// Store loads and saves pairing state keyed by an opaque scope (a guild ID).
// Load methods return ErrNotFound when nothing was saved, a *CorruptError when
// the saved record cannot be decoded, and any other error for transport failures.
type Store interface {
	LoadHistory(ctx context.Context, scope string) (*pairing.History, error)
	SaveHistory(ctx context.Context, scope string, h *pairing.History) error
	LoadRound(ctx context.Context, scope string) (*pairing.Round, error)
	SaveRound(ctx context.Context, scope string, r *pairing.Round) error
}

// StateSaver is implemented by stores that can write a history and the round
// produced from it in one transaction.
type StateSaver interface {
	SaveRoundState(ctx context.Context, scope string, h *pairing.History, r *pairing.Round) error
}

// ErrRoundNotSaved means the history was saved but the round record was not,
// so the pairs already count towards future rounds.
var ErrRoundNotSaved = errors.New("history saved but round record was not")

// CorruptError reports a saved record that exists but cannot be read.
type CorruptError struct {
	Scope string
	Kind  string
	Err   error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt %s record for %s: %v", e.Kind, e.Scope, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

type LoadStatus int

const (
	Found LoadStatus = iota
	NotFound
	Corrupt
	Failed
)

func (s LoadStatus) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not found"
	case Corrupt:
		return "corrupt"
	default:
		return "failed"
	}
}

// Classify maps the error from a Load call to a LoadStatus.
func Classify(err error) LoadStatus {
	var corrupt *CorruptError
	switch {
	case err == nil:
		return Found
	case errors.Is(err, ErrNotFound):
		return NotFound
	case errors.As(err, &corrupt):
		return Corrupt
	default:
		return Failed
	}
}

// LoadHistoryOrEmpty returns the saved history for scope, or a fresh one when
// none exists or the saved one is unreadable. Transport failures are returned
// so the caller does not overwrite good state with an empty history.
func LoadHistoryOrEmpty(ctx context.Context, st Store, scope string) (*pairing.History, error) {
	h, err := st.LoadHistory(ctx, scope)
	switch Classify(err) {
	case Found:
		return h, nil
	case NotFound:
		log.Printf("store: no history found for %s, making new history", scope)
		return pairing.NewHistory(), nil
	case Corrupt:
		log.Printf("store: WARNING discarding unreadable history for %s: %v", scope, err)
		return pairing.NewHistory(), nil
	default:
		return nil, fmt.Errorf("load history: %w", err)
	}
}

// LoadRoundOrNil returns the latest saved round for scope. A missing or
// unreadable round yields nil with no error.
func LoadRoundOrNil(ctx context.Context, st Store, scope string) (*pairing.Round, error) {
	r, err := st.LoadRound(ctx, scope)
	switch Classify(err) {
	case Found:
		return r, nil
	case NotFound:
		return nil, nil
	case Corrupt:
		log.Printf("store: WARNING ignoring unreadable round for %s: %v", scope, err)
		return nil, nil
	default:
		return nil, fmt.Errorf("load round: %w", err)
	}
}

// SaveState persists h and r for scope. A StateSaver commits both or neither.
// Other stores get the history first; if only the round write then fails the
// error wraps ErrRoundNotSaved.
func SaveState(ctx context.Context, st Store, scope string, h *pairing.History, r *pairing.Round) error {
	if ss, ok := st.(StateSaver); ok {
		if err := ss.SaveRoundState(ctx, scope, h, r); err != nil {
			return fmt.Errorf("save round state: %w", err)
		}
		return nil
	}
	if err := st.SaveHistory(ctx, scope, h); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	if err := st.SaveRound(ctx, scope, r); err != nil {
		return fmt.Errorf("%w: %v", ErrRoundNotSaved, err)
	}
	return nil
}
