package bot

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/susu3304/pairbot/internal/config"
	"github.com/susu3304/pairbot/internal/rounds"
)

type Bot struct {
	session *discordgo.Session
	rounds  *rounds.Service
	members *memberDirectory
	cfg     *config.Config
}

// NewSession creates the discordgo session without connecting, so storage
// backends that post to channels can share it.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	return session, nil
}

func New(session *discordgo.Session, svc *rounds.Service, cfg *config.Config) *Bot {
	bot := &Bot{
		session: session,
		rounds:  svc,
		members: newMemberDirectory(session),
		cfg:     cfg,
	}

	// Register event handlers
	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onGuildCreate)
	session.AddHandler(bot.onInteractionCreate)

	return bot
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	log.Println("Discord bot is running")
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}
