package store

import (
	"encoding/json"

	"github.com/susu3304/pairbot/internal/pairing"
)

// Records are plain JSON:
//
//	history: {"histories": {"<id>": ["<id>", ...]}}
//	round:   {"pairs": [["<id>", "<id>"], ...], "leftover": ["<id>", ...]}

func EncodeHistory(h *pairing.History) ([]byte, error) {
	return json.Marshal(h)
}

func DecodeHistory(scope string, data []byte) (*pairing.History, error) {
	h := pairing.NewHistory()
	if err := json.Unmarshal(data, h); err != nil {
		return nil, &CorruptError{Scope: scope, Kind: "history", Err: err}
	}
	return h, nil
}

func EncodeRound(r *pairing.Round) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRound(scope string, data []byte) (*pairing.Round, error) {
	var r pairing.Round
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, &CorruptError{Scope: scope, Kind: "round", Err: err}
	}
	return &r, nil
}
