package chanstore

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/susu3304/pairbot/internal/pairing"
	"github.com/susu3304/pairbot/internal/store"
)

// fakeSession keeps posted files in memory and serves them over srv.
type fakeSession struct {
	mu       sync.Mutex
	channels []*discordgo.Channel
	messages map[string][]*discordgo.Message
	files    map[string][]byte
	srv      *httptest.Server
}

func newFakeSession(t *testing.T, channelNames ...string) *fakeSession {
	f := &fakeSession{
		messages: make(map[string][]*discordgo.Message),
		files:    make(map[string][]byte),
	}
	for i, name := range channelNames {
		f.channels = append(f.channels, &discordgo.Channel{
			ID:   string(rune('A' + i)),
			Name: name,
			Type: discordgo.ChannelTypeGuildText,
		})
	}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		data, ok := f.files[r.URL.Path]
		f.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeSession) GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	return f.channels, nil
}

func (f *fakeSession) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[channelID]
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg := &discordgo.Message{ChannelID: channelID}
	for _, file := range data.Files {
		body, err := io.ReadAll(file.Reader)
		if err != nil {
			return nil, err
		}
		path := "/" + channelID + "/" + string(rune('0'+len(f.messages[channelID]))) + "/" + file.Name
		f.files[path] = body
		msg.Attachments = append(msg.Attachments, &discordgo.MessageAttachment{Filename: file.Name, URL: f.srv.URL + path})
	}
	// newest first, like the Discord API
	f.messages[channelID] = append([]*discordgo.Message{msg}, f.messages[channelID]...)
	return msg, nil
}

func (f *fakeSession) pushMessage(channelID string, msg *discordgo.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[channelID] = append([]*discordgo.Message{msg}, f.messages[channelID]...)
}

func TestHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := newFakeSession(t, "general", "1on1-history", "1on1-pairs")
	st := New(fs, Config{})

	if _, err := st.LoadHistory(ctx, "g1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("empty channel: err = %v, want ErrNotFound", err)
	}

	h := pairing.NewHistory()
	h.RecordPair("1", "2")
	if err := st.SaveHistory(ctx, "g1", h); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	h.RecordPair("1", "3")
	if err := st.SaveHistory(ctx, "g1", h); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}

	got, err := st.LoadHistory(ctx, "g1")
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if got.Count("1", "3") != 1 || got.Count("2", "1") != 1 {
		t.Errorf("loaded stale history: %v", got.Participants())
	}
	if fs.messages["B"][0].Attachments[0].Filename != "history.json" {
		t.Errorf("filename = %s", fs.messages["B"][0].Attachments[0].Filename)
	}
}

func TestRoundRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := newFakeSession(t, "1on1-history", "1on1-pairs")
	st := New(fs, Config{})

	r := &pairing.Round{Pairs: []pairing.Pair{{"1", "2"}}, Leftover: []string{"3"}}
	if err := st.SaveRound(ctx, "g1", r); err != nil {
		t.Fatalf("SaveRound: %v", err)
	}
	got, err := st.LoadRound(ctx, "g1")
	if err != nil {
		t.Fatalf("LoadRound: %v", err)
	}
	if len(got.Pairs) != 1 || got.Pairs[0] != (pairing.Pair{"1", "2"}) || len(got.Leftover) != 1 {
		t.Errorf("got %+v", got)
	}
}

func TestMissingChannel(t *testing.T) {
	ctx := context.Background()
	st := New(newFakeSession(t, "general"), Config{})

	if _, err := st.LoadRound(ctx, "g1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("LoadRound err = %v, want ErrNotFound", err)
	}
	if err := st.SaveRound(ctx, "g1", &pairing.Round{}); !errors.Is(err, errNoChannel) {
		t.Errorf("SaveRound err = %v, want errNoChannel", err)
	}
}

func TestCustomChannelNames(t *testing.T) {
	ctx := context.Background()
	fs := newFakeSession(t, "pairs-log")
	st := New(fs, Config{RoundChannel: "pairs-log", RoundFile: "latest.json"})

	if err := st.SaveRound(ctx, "g1", &pairing.Round{}); err != nil {
		t.Fatalf("SaveRound: %v", err)
	}
	if name := fs.messages["A"][0].Attachments[0].Filename; name != "latest.json" {
		t.Errorf("filename = %s, want latest.json", name)
	}
}

func TestCorruptAttachments(t *testing.T) {
	ctx := context.Background()

	t.Run("no record file", func(t *testing.T) {
		fs := newFakeSession(t, "1on1-history")
		fs.pushMessage("A", &discordgo.Message{Content: "hello"})
		fs.pushMessage("A", &discordgo.Message{Attachments: []*discordgo.MessageAttachment{{Filename: "cat.png", URL: fs.srv.URL + "/cat.png"}}})
		_, err := New(fs, Config{}).LoadHistory(ctx, "g1")
		if store.Classify(err) != store.Corrupt {
			t.Errorf("Classify(%v) = %v, want corrupt", err, store.Classify(err))
		}
	})

	t.Run("bad json", func(t *testing.T) {
		fs := newFakeSession(t, "1on1-history")
		fs.files["/bad.json"] = []byte("{{")
		fs.pushMessage("A", &discordgo.Message{Attachments: []*discordgo.MessageAttachment{{Filename: "history.json", URL: fs.srv.URL + "/bad.json"}}})
		_, err := New(fs, Config{}).LoadHistory(ctx, "g1")
		if store.Classify(err) != store.Corrupt {
			t.Errorf("Classify(%v) = %v, want corrupt", err, store.Classify(err))
		}
	})

	t.Run("download failure", func(t *testing.T) {
		fs := newFakeSession(t, "1on1-history")
		fs.pushMessage("A", &discordgo.Message{Attachments: []*discordgo.MessageAttachment{{Filename: "history.json", URL: fs.srv.URL + "/gone.json"}}})
		_, err := New(fs, Config{}).LoadHistory(ctx, "g1")
		if store.Classify(err) != store.Failed {
			t.Errorf("Classify(%v) = %v, want failed", err, store.Classify(err))
		}
	})
}

func TestChatAboveRecordIsSkipped(t *testing.T) {
	ctx := context.Background()
	fs := newFakeSession(t, "1on1-history")
	st := New(fs, Config{})

	h := pairing.NewHistory()
	h.RecordPair("1", "2")
	if err := st.SaveHistory(ctx, "g1", h); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	fs.pushMessage("A", &discordgo.Message{Content: "who is my partner this week?"})
	fs.pushMessage("A", &discordgo.Message{Attachments: []*discordgo.MessageAttachment{{Filename: "notes.txt", URL: fs.srv.URL + "/notes.txt"}}})

	got, err := st.LoadHistory(ctx, "g1")
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if got.Count("1", "2") != 1 {
		t.Errorf("loaded wrong record: %v", got.Participants())
	}
}
