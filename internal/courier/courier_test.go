package courier

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

// fakeSession implements Session for tests.
type fakeSession struct {
	sent       []string
	replies    []string
	deleted    []string
	fetchFail  map[string]bool
	deleteFail map[string]bool
	dmFail     bool
	nextID     int
}

func (f *fakeSession) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, content)
	f.nextID++
	return &discordgo.Message{ID: "m" + strconv.Itoa(f.nextID), ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageSendReply(channelID, content string, ref *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.replies = append(f.replies, content)
	return &discordgo.Message{ID: "warn", ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.fetchFail[messageID] {
		return nil, errors.New("unknown message")
	}
	return &discordgo.Message{ID: messageID, ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error {
	if f.deleteFail[messageID] {
		return errors.New("already deleted")
	}
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeSession) UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.dmFail {
		return nil, errors.New("cannot open DM")
	}
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func TestPruneTrail(t *testing.T) {
	s := &fakeSession{
		fetchFail:  map[string]bool{"gone": true},
		deleteFail: map[string]bool{"stuck": true},
	}

	PruneTrail(s, "chan", []string{"a", "", "gone", "stuck", "b", "keep"}, "keep")

	want := []string{"a", "b"}
	if len(s.deleted) != len(want) {
		t.Fatalf("deleted = %v, want %v", s.deleted, want)
	}
	for i := range want {
		if s.deleted[i] != want[i] {
			t.Errorf("deleted[%d] = %q, want %q", i, s.deleted[i], want[i])
		}
	}
}

func TestDMOrFallbackDelivers(t *testing.T) {
	s := &fakeSession{}
	msg := &discordgo.Message{ID: "orig", ChannelID: "chan", Author: &discordgo.User{ID: "u1"}}

	if !DMOrFallback(s, msg, "report") {
		t.Fatal("DMOrFallback returned false on open DMs")
	}
	if len(s.sent) != 1 || s.sent[0] != "report" {
		t.Errorf("sent = %v, want the report via DM", s.sent)
	}
	if len(s.replies) != 0 {
		t.Errorf("unexpected fallback replies: %v", s.replies)
	}
}

func TestDMOrFallbackFallsBackOnClosedDMs(t *testing.T) {
	s := &fakeSession{dmFail: true}
	msg := &discordgo.Message{ID: "orig", ChannelID: "chan", Author: &discordgo.User{ID: "u1"}}

	if DMOrFallback(s, msg, "report") {
		t.Fatal("DMOrFallback returned true despite closed DMs")
	}
	if len(s.replies) != 1 {
		t.Fatalf("replies = %v, want one fallback reply", s.replies)
	}
	if got := s.replies[0]; got == "report" {
		t.Error("fallback reply missing the closed-DMs notice")
	}
}

func TestCollectorAwaitReceives(t *testing.T) {
	c := NewCollector()

	go func() {
		// Give Await a moment to register its waiter.
		time.Sleep(10 * time.Millisecond)
		c.Offer(&discordgo.Message{ID: "m1", ChannelID: "dm", Author: &discordgo.User{ID: "u1"}, Content: "42"})
	}()

	m, err := c.Await("u1", "dm", time.Second)
	if err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	if m.Content != "42" {
		t.Errorf("Await() content = %q, want 42", m.Content)
	}
}

func TestCollectorAwaitTimesOut(t *testing.T) {
	c := NewCollector()

	_, err := c.Await("u1", "dm", 20*time.Millisecond)
	if !errors.Is(err, ErrAwaitTimeout) {
		t.Fatalf("Await() error = %v, want ErrAwaitTimeout", err)
	}
}

func TestCollectorOfferIgnoresStrangers(t *testing.T) {
	c := NewCollector()
	consumed := c.Offer(&discordgo.Message{ID: "m1", ChannelID: "dm", Author: &discordgo.User{ID: "nobody"}})
	if consumed {
		t.Fatal("Offer consumed a message with no waiter")
	}
}

func TestCollectorScopesWaitersByChannel(t *testing.T) {
	c := NewCollector()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := c.Await("u1", "dm-a", 50*time.Millisecond)
		if !errors.Is(err, ErrAwaitTimeout) {
			t.Errorf("Await() error = %v, want timeout (wrong-channel message must not match)", err)
		}
	}()

	time.Sleep(10 * time.Millisecond)
	if c.Offer(&discordgo.Message{ID: "m1", ChannelID: "dm-b", Author: &discordgo.User{ID: "u1"}}) {
		t.Error("Offer matched a waiter in a different channel")
	}
	<-done
}
