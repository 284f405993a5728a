package pairing

import "sort"

// Engine partitions participants into pairs, preferring the pairings that
// have happened least often.
type Engine struct {
	rng Rand
}

// NewEngine returns an engine drawing from rng. A nil rng uses the
// process-wide shared source.
func NewEngine(rng Rand) *Engine {
	if rng == nil {
		rng = sharedRand{}
	}
	return &Engine{rng: rng}
}

// PairRound pairs everyone in participants, recording each committed pair in h.
// With an odd count, one participant is matched with the least-seen filler, or
// left over when no filler is usable. Only participants and the chosen filler
// have their history touched.
func (e *Engine) PairRound(h *History, participants, fillers []string) Round {
	pool := dedupe(participants)
	round := Round{Pairs: []Pair{}, Leftover: []string{}}
	if len(pool) == 0 {
		return round
	}

	h.EnsureKnown(pool...)

	if len(pool)%2 == 1 {
		inPool := make(map[string]bool, len(pool))
		for _, p := range pool {
			inPool[p] = true
		}
		var usable []string
		for _, f := range dedupe(fillers) {
			if !inPool[f] {
				usable = append(usable, f)
			}
		}

		idx := e.rng.Intn(len(pool))
		person := pool[idx]
		pool = append(pool[:idx:idx], pool[idx+1:]...)

		if len(usable) > 0 {
			h.EnsureKnown(usable...)
			filler := e.leastSeen(h, person, usable)
			h.RecordPair(person, filler)
			round.Pairs = append(round.Pairs, Pair{person, filler})
		} else {
			round.Leftover = append(round.Leftover, person)
		}
	}

	used := make(map[string]bool, len(pool))
	for len(used) < len(pool) {
		candidates := leastFrequentPairs(h, pool, used)
		if len(candidates) == 0 {
			for _, p := range pool {
				if !used[p] {
					round.Leftover = append(round.Leftover, p)
				}
			}
			break
		}
		pair := candidates[e.rng.Intn(len(candidates))]
		h.RecordPair(pair[0], pair[1])
		round.Pairs = append(round.Pairs, pair)
		used[pair[0]] = true
		used[pair[1]] = true
	}

	return round
}

// PairPerson pairs person with the least-seen candidate from the first pool
// that has anyone other than person in it. Pools are not modified. It returns
// false when every pool is exhausted; h is then unchanged.
func (e *Engine) PairPerson(h *History, person string, pools ...[]string) (string, bool) {
	for _, pool := range pools {
		var group []string
		for _, c := range dedupe(pool) {
			if c != person {
				group = append(group, c)
			}
		}
		if len(group) == 0 {
			continue
		}

		e.rng.Shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })
		sort.SliceStable(group, func(i, j int) bool {
			return h.Count(person, group[i]) < h.Count(person, group[j])
		})

		partner := group[0]
		h.EnsureKnown(person, partner)
		h.RecordPair(person, partner)
		return partner, true
	}
	return "", false
}

// leastSeen picks the candidate person has been paired with least, choosing
// uniformly among ties.
func (e *Engine) leastSeen(h *History, person string, candidates []string) string {
	var best []string
	least := -1
	for _, c := range candidates {
		n := h.Count(person, c)
		switch {
		case least < 0 || n < least:
			least = n
			best = []string{c}
		case n == least:
			best = append(best, c)
		}
	}
	return best[e.rng.Intn(len(best))]
}

// leastFrequentPairs returns every unused pair whose count equals the minimum
// over all unused pairs.
func leastFrequentPairs(h *History, pool []string, used map[string]bool) []Pair {
	var out []Pair
	least := -1
	for i := 0; i < len(pool); i++ {
		if used[pool[i]] {
			continue
		}
		for j := i + 1; j < len(pool); j++ {
			if used[pool[j]] {
				continue
			}
			n := h.Count(pool[i], pool[j])
			switch {
			case least < 0 || n < least:
				least = n
				out = []Pair{{pool[i], pool[j]}}
			case n == least:
				out = append(out, Pair{pool[i], pool[j]})
			}
		}
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
