package commands

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/susu3304/pairbot/internal/config"
	"github.com/susu3304/pairbot/internal/rounds"
	"github.com/susu3304/pairbot/internal/store"
)

const (
	msgSaveFailed    = "Pairing failed, nothing was saved. Try again later."
	msgRoundNotSaved = "These pairs are recorded in the history, but the round record could not be saved, so /pairs may not show them. Do not run this again."
)

// MemberLookup resolves a role (by ID or name) to the IDs of its members.
type MemberLookup interface {
	RoleMembers(guildID, role string) ([]string, error)
}

func HandlePair(s Session, i *discordgo.InteractionCreate, svc *rounds.Service, members MemberLookup, cfg *config.Config) {
	data := i.ApplicationCommandData()

	role := getRoleOption(data.Options, "role")
	if role == "" {
		role = cfg.ParticipantRole
	}
	fillerRole := getRoleOption(data.Options, "filler_role")
	if fillerRole == "" {
		fillerRole = cfg.FillerRole
	}
	carry := true
	if v := getBoolOption(data.Options, "carry"); v != nil {
		carry = *v
	}

	if err := deferResponse(s, i); err != nil {
		log.Printf("pair: failed to defer response: %v", err)
		return
	}

	participants, err := members.RoleMembers(i.GuildID, role)
	if err != nil {
		log.Printf("pair: role lookup failed in guild %s: %v", i.GuildID, err)
		followUp(s, i, []string{"Could not look up the participant role."})
		return
	}
	fillers, err := fillerMembers(members, i.GuildID, fillerRole)
	if err != nil {
		log.Printf("pair: filler lookup failed in guild %s: %v", i.GuildID, err)
		followUp(s, i, []string{"Could not look up the filler role."})
		return
	}

	round, err := svc.RunRound(context.Background(), i.GuildID, rounds.RoundRequest{
		Participants:   participants,
		Fillers:        fillers,
		CarryLeftovers: carry,
	})
	switch {
	case errors.Is(err, store.ErrRoundNotSaved):
		followUp(s, i, append(FormatRound("**This round's 1:1 pairings**", round), msgRoundNotSaved))
	case err != nil:
		log.Printf("pair: round failed in guild %s: %v", i.GuildID, err)
		followUp(s, i, []string{msgSaveFailed})
	default:
		followUp(s, i, FormatRound("**This round's 1:1 pairings**", round))
	}
}

func HandlePairMe(s Session, i *discordgo.InteractionCreate, svc *rounds.Service, members MemberLookup, cfg *config.Config) {
	person := invokerID(i)
	if person == "" {
		respondEphemeral(s, i, "Could not tell who you are.")
		return
	}

	if err := deferResponse(s, i); err != nil {
		log.Printf("pairme: failed to defer response: %v", err)
		return
	}

	// without fillers the leftovers can still be drawn
	fillers, err := fillerMembers(members, i.GuildID, cfg.FillerRole)
	if err != nil {
		log.Printf("pairme: filler lookup failed in guild %s: %v", i.GuildID, err)
	}

	partner, ok, err := svc.PairMe(context.Background(), i.GuildID, person, fillers)
	var content string
	switch {
	case errors.Is(err, rounds.ErrAlreadyPaired):
		content = "You already have a partner this round. Check /pairs."
	case errors.Is(err, store.ErrRoundNotSaved):
		content = fmt.Sprintf("%s you are paired with %s! The round record could not be updated, so /pairs may not show this pair yet.", mention(person), mention(partner))
	case err != nil:
		log.Printf("pairme: failed in guild %s: %v", i.GuildID, err)
		content = msgSaveFailed
	case !ok:
		content = "Nobody is free right now. Try again after the next round."
	default:
		content = fmt.Sprintf("%s you are paired with %s!", mention(person), mention(partner))
	}
	followUp(s, i, []string{content})
}

func HandlePairs(s Session, i *discordgo.InteractionCreate, svc *rounds.Service) {
	data := i.ApplicationCommandData()
	here := getBoolOption(data.Options, "here")
	dm := getBoolOption(data.Options, "dm")

	dest, err := ResolveDestination(here != nil && *here, dm != nil && *dm)
	if err != nil {
		respondEphemeral(s, i, "Pick exactly one of `here` or `dm`.")
		return
	}

	round, err := svc.LatestRound(context.Background(), i.GuildID)
	if errors.Is(err, rounds.ErrNoRound) {
		respondEphemeral(s, i, "No pairings yet. An admin can start a round with /pair.")
		return
	}
	if err != nil {
		log.Printf("pairs: failed to load round for guild %s: %v", i.GuildID, err)
		respondEphemeral(s, i, "Could not load the latest pairings.")
		return
	}

	chunks := FormatRound("**Latest 1:1 pairings**", round)
	switch dest {
	case DestinationHere:
		if err := deferResponse(s, i); err != nil {
			log.Printf("pairs: failed to defer response: %v", err)
			return
		}
		followUp(s, i, chunks)
	case DestinationDM:
		ch, err := s.UserChannelCreate(invokerID(i))
		if err != nil {
			log.Printf("pairs: failed to open DM with %s: %v", invokerID(i), err)
			respondEphemeral(s, i, "Could not open a DM with you.")
			return
		}
		for _, c := range chunks {
			if _, err := s.ChannelMessageSend(ch.ID, c); err != nil {
				log.Printf("pairs: failed to DM %s: %v", invokerID(i), err)
				respondEphemeral(s, i, "Could not send you a DM.")
				return
			}
		}
		respondEphemeral(s, i, "Sent you the pairings in a DM.")
	}
}

func fillerMembers(members MemberLookup, guildID, role string) ([]string, error) {
	if role == "" {
		return nil, nil
	}
	return members.RoleMembers(guildID, role)
}
