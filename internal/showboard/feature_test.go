package showboard

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cardboardcollective/mechabot/internal/config"
	"github.com/cardboardcollective/mechabot/internal/jsonstore"
)

type fakeDiscord struct {
	mu          sync.Mutex
	sent        map[string][]string
	deleted     []string
	dmFail      bool
	channelType discordgo.ChannelType
	channelErr  error

	threadsCreated []string // titles
	threadBodies   []string
	renamed        map[string]string // threadID -> new name
	edited         map[string]string // threadID -> new body
	nextID         int
}

func newFakeDiscord() *fakeDiscord {
	return &fakeDiscord{
		sent:        make(map[string][]string),
		renamed:     make(map[string]string),
		edited:      make(map[string]string),
		channelType: discordgo.ChannelTypeGuildForum,
	}
}

func (f *fakeDiscord) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[channelID] = append(f.sent[channelID], content)
	f.nextID++
	return &discordgo.Message{ID: "sent" + strconv.Itoa(f.nextID), ChannelID: channelID}, nil
}

func (f *fakeDiscord) ChannelMessageSendReply(channelID, content string, ref *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return f.ChannelMessageSend(channelID, content)
}

func (f *fakeDiscord) ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return &discordgo.Message{ID: messageID, ChannelID: channelID}, nil
}

func (f *fakeDiscord) ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeDiscord) UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.dmFail {
		return nil, errors.New("DMs closed")
	}
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (f *fakeDiscord) Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.channelErr != nil {
		return nil, f.channelErr
	}
	return &discordgo.Channel{ID: channelID, Type: f.channelType}, nil
}

func (f *fakeDiscord) ChannelEdit(channelID string, data *discordgo.ChannelEdit, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.renamed[channelID] = data.Name
	return &discordgo.Channel{ID: channelID}, nil
}

func (f *fakeDiscord) ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.edited[channelID] = content
	return &discordgo.Message{ID: messageID}, nil
}

func (f *fakeDiscord) ForumThreadStartComplex(channelID string, threadData *discordgo.ThreadStart, messageData *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.threadsCreated = append(f.threadsCreated, threadData.Name)
	f.threadBodies = append(f.threadBodies, messageData.Content)
	return &discordgo.Channel{ID: "thread-1", Type: discordgo.ChannelTypeGuildPublicThread}, nil
}

func newTestFeature(t *testing.T, d *fakeDiscord) *Feature {
	t.Helper()
	files, err := jsonstore.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	f := New(d, config.ShowBoardCfg{ForumChannelID: "forum"}, NewStore(files))
	f.now = func() time.Time { return time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC) }
	return f
}

func guildMsg(id, userID, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        id,
		GuildID:   "g1",
		ChannelID: "chan",
		Content:   content,
		Author:    &discordgo.User{ID: userID},
	}}
}

func runWizard(t *testing.T, f *Feature, link string) {
	t.Helper()
	if !f.HandleMessage(guildMsg("m1", "u1", "mw show")) {
		t.Fatal("mw show not handled")
	}
	for i, answer := range []string{"wafflefan", "Jan 9", "7:00pm ET", "Marvel break", link} {
		if !f.HandleMessage(guildMsg("a"+strconv.Itoa(i), "u1", answer)) {
			t.Fatalf("answer %q not handled", answer)
		}
	}
}

func TestShowWizardCreatesForumPost(t *testing.T) {
	d := newFakeDiscord()
	f := newTestFeature(t, d)

	runWizard(t, f, "https://whatnot.com/live/abc")

	if len(d.threadsCreated) != 1 || d.threadsCreated[0] != "wafflefan : Jan 9 7:00pm ET" {
		t.Fatalf("threads = %v, want titled forum post", d.threadsCreated)
	}
	if d.threadBodies[0] != "Marvel break\n\nhttps://whatnot.com/live/abc" {
		t.Errorf("body = %q", d.threadBodies[0])
	}

	// Receipt DM includes the thread URL.
	dms := d.sent["dm-u1"]
	if len(dms) != 1 || !strings.Contains(dms[0], "Show Card Created") {
		t.Fatalf("DMs = %v, want created receipt", dms)
	}
	if !strings.Contains(dms[0], "https://discord.com/channels/g1/thread-1") {
		t.Error("receipt missing thread URL")
	}

	// Record persisted under the guild.
	doc := f.store.Load()
	rec := FindUserShow(doc, "g1", "u1")
	if rec == nil || rec.ThreadID != "thread-1" || rec.Link != "https://whatnot.com/live/abc" {
		t.Fatalf("persisted record = %+v", rec)
	}
	if rec.UpdatedUTC != "2026-01-09T12:00:00Z" {
		t.Errorf("UpdatedUTC = %q", rec.UpdatedUTC)
	}

	// Whole interaction trail pruned (command + answers + prompts).
	if len(d.deleted) == 0 {
		t.Error("trail not pruned after completion")
	}
	if _, ok := f.sessions.Get("g1:chan:u1"); ok {
		t.Error("session survived completion")
	}
}

func TestShowWizardSkipLink(t *testing.T) {
	d := newFakeDiscord()
	f := newTestFeature(t, d)

	runWizard(t, f, "skip")

	rec := FindUserShow(f.store.Load(), "g1", "u1")
	if rec == nil || rec.Link != "" {
		t.Fatalf("record = %+v, want absent link", rec)
	}
	dms := d.sent["dm-u1"]
	if !strings.Contains(dms[0], "**Link:** (none)") {
		t.Errorf("receipt = %q, want (none) link", dms[0])
	}
}

func TestShowWizardUpdatesExistingPost(t *testing.T) {
	d := newFakeDiscord()
	f := newTestFeature(t, d)

	runWizard(t, f, "skip")
	runWizard(t, f, "https://whatnot.com/live/new")

	// Second run edits in place instead of creating a second thread.
	if len(d.threadsCreated) != 1 {
		t.Fatalf("threads = %v, want exactly one", d.threadsCreated)
	}
	if d.renamed["thread-1"] != "wafflefan : Jan 9 7:00pm ET" {
		t.Errorf("renamed = %v", d.renamed)
	}
	if !strings.Contains(d.edited["thread-1"], "https://whatnot.com/live/new") {
		t.Errorf("edited body = %q", d.edited["thread-1"])
	}

	dms := d.sent["dm-u1"]
	if !strings.Contains(dms[len(dms)-1], "Show Card Updated") {
		t.Errorf("receipt = %q, want updated", dms[len(dms)-1])
	}

	// Still one record for the (guild, owner) pair.
	if got := len(f.store.Load()["g1"]); got != 1 {
		t.Errorf("records = %d, want 1", got)
	}
}

func TestShowWizardConcurrentAnswersAreSerialized(t *testing.T) {
	// Two answers arriving together must each land on their own step. An
	// interleaved transition would apply both to the same step and lose one.
	for i := 0; i < 50; i++ {
		d := newFakeDiscord()
		f := newTestFeature(t, d)

		f.HandleMessage(guildMsg("m1", "u1", "mw show"))

		var wg sync.WaitGroup
		for _, answer := range []string{"wafflefan", "Jan 9"} {
			wg.Add(1)
			go func(answer string) {
				defer wg.Done()
				f.HandleMessage(guildMsg("m-"+answer, "u1", answer))
			}(answer)
		}
		wg.Wait()

		sess, ok := f.sessions.Get("g1:chan:u1")
		if !ok {
			t.Fatalf("iteration %d: session gone mid-wizard", i)
		}
		if sess.StepIndex != 2 {
			t.Fatalf("iteration %d: StepIndex = %d, want 2 (one answer lost): %+v", i, sess.StepIndex, sess)
		}
		if sess.Data.WhatnotName == "" || sess.Data.Date == "" {
			t.Fatalf("iteration %d: fields = %+v, want both answers recorded", i, sess.Data)
		}
	}
}

func TestShowWizardCancel(t *testing.T) {
	d := newFakeDiscord()
	f := newTestFeature(t, d)

	f.HandleMessage(guildMsg("m1", "u1", "mw show"))
	f.HandleMessage(guildMsg("m2", "u1", "wafflefan"))
	if !f.HandleMessage(guildMsg("m3", "u1", "cancel")) {
		t.Fatal("cancel not handled")
	}

	if _, ok := f.sessions.Get("g1:chan:u1"); ok {
		t.Error("session survived cancel")
	}
	dms := d.sent["dm-u1"]
	if len(dms) != 1 || !strings.Contains(dms[0], "cancelled") {
		t.Errorf("DMs = %v, want cancel notice", dms)
	}
	if len(d.deleted) == 0 {
		t.Error("trail not pruned on cancel")
	}
}

func TestShowWizardInvalidForumChannel(t *testing.T) {
	d := newFakeDiscord()
	d.channelType = discordgo.ChannelTypeGuildText
	f := newTestFeature(t, d)

	runWizard(t, f, "skip")

	dms := d.sent["dm-u1"]
	if len(dms) != 1 || !strings.Contains(dms[0], "not a Forum channel") {
		t.Fatalf("DMs = %v, want configuration hint", dms)
	}
	if rec := FindUserShow(f.store.Load(), "g1", "u1"); rec != nil {
		t.Error("record persisted despite lookup failure")
	}
	if len(d.deleted) == 0 {
		t.Error("trail not pruned on failure")
	}
}

func TestShowWizardMissingForumConfig(t *testing.T) {
	d := newFakeDiscord()
	files, err := jsonstore.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	f := New(d, config.ShowBoardCfg{}, NewStore(files))

	runWizard(t, f, "skip")

	dms := d.sent["dm-u1"]
	if len(dms) != 1 || !strings.Contains(dms[0], "forumChannelId") {
		t.Fatalf("DMs = %v, want missing-config hint", dms)
	}
}

func TestShowWizardIgnoresDMsAndBots(t *testing.T) {
	d := newFakeDiscord()
	f := newTestFeature(t, d)

	dm := guildMsg("m1", "u1", "mw show")
	dm.GuildID = ""
	if f.HandleMessage(dm) {
		t.Error("DM message handled by guild-only feature")
	}

	bot := guildMsg("m2", "u1", "mw show")
	bot.Author.Bot = true
	if f.HandleMessage(bot) {
		t.Error("bot message handled")
	}
}
