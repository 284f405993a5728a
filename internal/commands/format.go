package commands

import (
	"fmt"
	"strings"

	"github.com/susu3304/pairbot/internal/pairing"
)

const maxMessageLen = 2000

func mention(id string) string {
	return fmt.Sprintf("<@%s>", id)
}

// FormatRound renders a round as one line per pair followed by the unpaired
// list, split into chunks that fit a Discord message.
func FormatRound(title string, r *pairing.Round) []string {
	var entries []string
	if title != "" {
		entries = append(entries, title)
	}
	if len(r.Pairs) == 0 {
		entries = append(entries, "No pairs this round.")
	}
	for _, p := range r.Pairs {
		entries = append(entries, fmt.Sprintf("%s ↔ %s", mention(p[0]), mention(p[1])))
	}
	if len(r.Leftover) > 0 {
		names := make([]string, len(r.Leftover))
		for i, id := range r.Leftover {
			names[i] = mention(id)
		}
		entries = append(entries, "Unpaired (use /pairme): "+strings.Join(names, " "))
	}
	return chunk(entries, maxMessageLen)
}

// chunk joins entries with newlines, starting a new chunk before one would
// exceed limit.
func chunk(entries []string, limit int) []string {
	var out []string
	var buffer strings.Builder
	for _, entry := range entries {
		if buffer.Len() > 0 && buffer.Len()+len(entry)+1 > limit {
			out = append(out, buffer.String())
			buffer.Reset()
		}
		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(entry)
	}
	if buffer.Len() > 0 {
		out = append(out, buffer.String())
	}
	return out
}
