package pairing

import (
	"encoding/json"
	"fmt"
)

// Pair is an unordered couple of participants.
type Pair [2]string

func (p Pair) Has(id string) bool {
	return p[0] == id || p[1] == id
}

// Other returns the partner of id within p.
func (p Pair) Other(id string) string {
	if p[0] == id {
		return p[1]
	}
	return p[0]
}

// Round is the outcome of one pairing pass: every input participant is in
// exactly one pair or exactly one leftover slot.
type Round struct {
	Pairs    []Pair
	Leftover []string
}

// Contains reports whether id was placed in a pair.
func (r *Round) Contains(id string) bool {
	for _, p := range r.Pairs {
		if p.Has(id) {
			return true
		}
	}
	return false
}

// PartnerOf returns id's partner for this round, if any.
func (r *Round) PartnerOf(id string) (string, bool) {
	for _, p := range r.Pairs {
		if p.Has(id) {
			return p.Other(id), true
		}
	}
	return "", false
}

// Members returns paired participants followed by leftovers.
func (r *Round) Members() []string {
	out := make([]string, 0, len(r.Pairs)*2+len(r.Leftover))
	for _, p := range r.Pairs {
		out = append(out, p[0], p[1])
	}
	return append(out, r.Leftover...)
}

func (r *Round) AddPair(a, b string) {
	r.Pairs = append(r.Pairs, Pair{a, b})
	r.RemoveLeftover(a)
	r.RemoveLeftover(b)
}

func (r *Round) RemoveLeftover(id string) {
	kept := r.Leftover[:0]
	for _, l := range r.Leftover {
		if l != id {
			kept = append(kept, l)
		}
	}
	r.Leftover = kept
}

func (r *Round) Clone() *Round {
	return &Round{
		Pairs:    append([]Pair{}, r.Pairs...),
		Leftover: append([]string{}, r.Leftover...),
	}
}

type roundRecord struct {
	Pairs    [][]flexID `json:"pairs"`
	Leftover []flexID   `json:"leftover"`
	Unpaired []flexID   `json:"unpaired,omitempty"`
}

func (r Round) MarshalJSON() ([]byte, error) {
	rec := struct {
		Pairs    [][]string `json:"pairs"`
		Leftover []string   `json:"leftover"`
	}{
		Pairs:    make([][]string, 0, len(r.Pairs)),
		Leftover: append([]string{}, r.Leftover...),
	}
	for _, p := range r.Pairs {
		rec.Pairs = append(rec.Pairs, []string{p[0], p[1]})
	}
	return json.Marshal(rec)
}

// UnmarshalJSON also accepts the legacy "unpaired" key for leftovers.
func (r *Round) UnmarshalJSON(data []byte) error {
	var rec roundRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	r.Pairs = make([]Pair, 0, len(rec.Pairs))
	for i, p := range rec.Pairs {
		if len(p) != 2 {
			return fmt.Errorf("pair %d has %d members", i, len(p))
		}
		r.Pairs = append(r.Pairs, Pair{string(p[0]), string(p[1])})
	}
	left := rec.Leftover
	if len(left) == 0 {
		left = rec.Unpaired
	}
	r.Leftover = make([]string, 0, len(left))
	for _, l := range left {
		r.Leftover = append(r.Leftover, string(l))
	}
	return nil
}
