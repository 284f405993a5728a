// Package chanstore keeps pairing state as JSON attachments posted to
// dedicated guild text channels. The newest message in a channel is the
// current record.
package chanstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/susu3304/pairbot/internal/pairing"
	"github.com/susu3304/pairbot/internal/store"
)

type Config struct {
	HistoryChannel string
	HistoryFile    string
	RoundChannel   string
	RoundFile      string
}

func DefaultConfig() Config {
	return Config{
		HistoryChannel: "1on1-history",
		HistoryFile:    "history.json",
		RoundChannel:   "1on1-pairs",
		RoundFile:      "pairs.json",
	}
}

// Minimal session interface for the channel calls we need.
type session interface {
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var errNoChannel = errors.New("channel not found")

// scanLimit is how many recent messages are searched for the record file.
const scanLimit = 50

type Store struct {
	session session
	cfg     Config
	http    *http.Client
}

func New(s session, cfg Config) *Store {
	def := DefaultConfig()
	if cfg.HistoryChannel == "" {
		cfg.HistoryChannel = def.HistoryChannel
	}
	if cfg.HistoryFile == "" {
		cfg.HistoryFile = def.HistoryFile
	}
	if cfg.RoundChannel == "" {
		cfg.RoundChannel = def.RoundChannel
	}
	if cfg.RoundFile == "" {
		cfg.RoundFile = def.RoundFile
	}
	return &Store{
		session: s,
		cfg:     cfg,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *Store) LoadHistory(ctx context.Context, guildID string) (*pairing.History, error) {
	data, err := s.latestAttachment(ctx, guildID, s.cfg.HistoryChannel, s.cfg.HistoryFile)
	if err != nil {
		return nil, err
	}
	return store.DecodeHistory(guildID, data)
}

func (s *Store) SaveHistory(ctx context.Context, guildID string, h *pairing.History) error {
	data, err := store.EncodeHistory(h)
	if err != nil {
		return err
	}
	return s.post(ctx, guildID, s.cfg.HistoryChannel, s.cfg.HistoryFile, data)
}

func (s *Store) LoadRound(ctx context.Context, guildID string) (*pairing.Round, error) {
	data, err := s.latestAttachment(ctx, guildID, s.cfg.RoundChannel, s.cfg.RoundFile)
	if err != nil {
		return nil, err
	}
	return store.DecodeRound(guildID, data)
}

func (s *Store) SaveRound(ctx context.Context, guildID string, r *pairing.Round) error {
	data, err := store.EncodeRound(r)
	if err != nil {
		return err
	}
	return s.post(ctx, guildID, s.cfg.RoundChannel, s.cfg.RoundFile, data)
}

func (s *Store) channelID(ctx context.Context, guildID, name string) (string, error) {
	channels, err := s.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("list channels: %w", err)
	}
	for _, c := range channels {
		if c.Name == name && c.Type == discordgo.ChannelTypeGuildText {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("%w: #%s in guild %s", errNoChannel, name, guildID)
}

// latestAttachment downloads the newest attachment named filename among the
// last scanLimit messages. Chat in the channel is skipped.
func (s *Store) latestAttachment(ctx context.Context, guildID, channelName, filename string) ([]byte, error) {
	chID, err := s.channelID(ctx, guildID, channelName)
	if errors.Is(err, errNoChannel) {
		return nil, fmt.Errorf("%w (%v)", store.ErrNotFound, err)
	}
	if err != nil {
		return nil, err
	}

	msgs, err := s.session.ChannelMessages(chID, scanLimit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("read #%s: %w", channelName, err)
	}
	if len(msgs) == 0 {
		return nil, store.ErrNotFound
	}
	for _, m := range msgs {
		for _, a := range m.Attachments {
			if a.Filename == filename {
				return s.download(ctx, a.URL)
			}
		}
	}
	return nil, &store.CorruptError{
		Scope: guildID,
		Kind:  channelName,
		Err:   fmt.Errorf("no %s in the last %d messages", filename, len(msgs)),
	}
}

func (s *Store) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "pairbot/1.0 (+https://github.com/susu3304/pairbot)")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("attachment download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (s *Store) post(ctx context.Context, guildID, channelName, filename string, data []byte) error {
	chID, err := s.channelID(ctx, guildID, channelName)
	if err != nil {
		return err
	}
	_, err = s.session.ChannelMessageSendComplex(chID, &discordgo.MessageSend{
		Files: []*discordgo.File{{
			Name:        filename,
			ContentType: "application/json",
			Reader:      bytes.NewReader(data),
		}},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("post to #%s: %w", channelName, err)
	}
	return nil
}

var _ store.Store = (*Store)(nil)
