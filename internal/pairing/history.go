package pairing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// verifySymmetry makes RecordPair panic when a→b and b→a counts diverge.
// Tests switch it on; production leaves it off.
var verifySymmetry = false

// History maps each participant to everyone they have been paired with.
// Repeats are kept; the number of occurrences is the ranking signal.
// The zero value is an empty History ready for use. A History is not safe for
// concurrent use.
type History struct {
	histories map[string][]string
}

func NewHistory() *History {
	return &History{histories: make(map[string][]string)}
}

// RecordPair appends b to a's list and a to b's list.
func (h *History) RecordPair(a, b string) {
	h.ensureMap()
	h.histories[a] = append(h.histories[a], b)
	h.histories[b] = append(h.histories[b], a)

	if verifySymmetry {
		if ab, ba := h.Count(a, b), h.Count(b, a); ab != ba {
			panic(fmt.Sprintf("pairing: asymmetric history %s→%s=%d %s→%s=%d", a, b, ab, b, a, ba))
		}
	}
}

// Count returns how many times b appears in a's history.
func (h *History) Count(a, b string) int {
	n := 0
	for _, p := range h.histories[a] {
		if p == b {
			n++
		}
	}
	return n
}

// EnsureKnown creates an empty entry for every id not seen before.
func (h *History) EnsureKnown(ids ...string) {
	h.ensureMap()
	for _, id := range ids {
		if _, ok := h.histories[id]; !ok {
			h.histories[id] = []string{}
		}
	}
}

func (h *History) ensureMap() {
	if h.histories == nil {
		h.histories = make(map[string][]string)
	}
}

func (h *History) Known(id string) bool {
	_, ok := h.histories[id]
	return ok
}

// Partners returns a copy of id's partner list in the order pairs were recorded.
func (h *History) Partners(id string) []string {
	return append([]string(nil), h.histories[id]...)
}

// Counts returns partner → number of pairings for id.
func (h *History) Counts(id string) map[string]int {
	out := make(map[string]int)
	for _, p := range h.histories[id] {
		out[p]++
	}
	return out
}

// Participants returns every tracked id, sorted.
func (h *History) Participants() []string {
	ids := make([]string, 0, len(h.histories))
	for id := range h.histories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (h *History) Len() int {
	return len(h.histories)
}

// Clone returns a deep copy. Changes to the copy never reach h.
func (h *History) Clone() *History {
	c := &History{histories: make(map[string][]string, len(h.histories))}
	for id, partners := range h.histories {
		c.histories[id] = append([]string{}, partners...)
	}
	return c
}

type historyRecord struct {
	Histories map[string][]flexID `json:"histories"`
}

func (h *History) MarshalJSON() ([]byte, error) {
	rec := struct {
		Histories map[string][]string `json:"histories"`
	}{Histories: h.histories}
	if rec.Histories == nil {
		rec.Histories = map[string][]string{}
	}
	return json.Marshal(rec)
}

func (h *History) UnmarshalJSON(data []byte) error {
	var rec historyRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	h.histories = make(map[string][]string, len(rec.Histories))
	for id, partners := range rec.Histories {
		list := make([]string, len(partners))
		for i, p := range partners {
			list[i] = string(p)
		}
		h.histories[id] = list
	}
	return nil
}

// flexID decodes an identifier written either as a JSON string or a JSON number.
// Older records stored numeric platform user IDs.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("participant id: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("participant id %q is not an integer", n.String())
	}
	*f = flexID(n.String())
	return nil
}
