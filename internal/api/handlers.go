package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"

	"github.com/gorilla/mux"
	"github.com/susu3304/pairbot/internal/rounds"
)

type partnerCount struct {
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleLatestRound(w http.ResponseWriter, r *http.Request) {
	guildID := mux.Vars(r)["guild_id"]

	round, err := a.rounds.LatestRound(r.Context(), guildID)
	if errors.Is(err, rounds.ErrNoRound) {
		http.Error(w, "no round yet", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("api: failed to load round for guild %s: %v", guildID, err)
		http.Error(w, "failed to load round", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, round)
}

func (a *API) handlePartners(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	guildID, userID := vars["guild_id"], vars["user_id"]

	counts, err := a.rounds.PartnerCounts(r.Context(), guildID, userID)
	if err != nil {
		log.Printf("api: failed to load history for guild %s: %v", guildID, err)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	out := make([]partnerCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, partnerCount{UserID: id, Count: n})
	}
	// most frequent first, then by id for a stable order
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].UserID < out[j].UserID
	})

	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
