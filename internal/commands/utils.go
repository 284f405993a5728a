package commands

import (
	"errors"
	"log"

	"github.com/bwmarrin/discordgo"
)

// ErrInvalidDestination is returned when a display request names neither or
// both of the mutually exclusive destinations.
var ErrInvalidDestination = errors.New("choose exactly one of here or dm")

type Destination int

const (
	DestinationHere Destination = iota + 1
	DestinationDM
)

func ResolveDestination(here, dm bool) (Destination, error) {
	switch {
	case here && !dm:
		return DestinationHere, nil
	case dm && !here:
		return DestinationDM, nil
	default:
		return 0, ErrInvalidDestination
	}
}

// Session is the subset of *discordgo.Session the command handlers use.
type Session interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

func respondEphemeral(s Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Failed to respond to interaction %s: %v", i.ID, err)
	}
}

// deferResponse acknowledges the interaction so slow storage does not hit
// Discord's three second limit; replies then go through followUp.
func deferResponse(s Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

// followUp sends each chunk as a follow-up message, logging the first failure.
func followUp(s Session, i *discordgo.InteractionCreate, chunks []string) {
	for _, c := range chunks {
		if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: c}); err != nil {
			log.Printf("Failed to send follow-up for interaction %s: %v", i.ID, err)
			return
		}
	}
}

func getBoolOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) *bool {
	for _, o := range opts {
		if o.Name == name {
			v := o.BoolValue()
			return &v
		}
	}
	return nil
}

// getRoleOption returns the raw role ID of a role option.
func getRoleOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, o := range opts {
		if o.Name != name {
			continue
		}
		if id, ok := o.Value.(string); ok {
			return id
		}
	}
	return ""
}

func invokerID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
