package showboard

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cardboardcollective/mechabot/internal/config"
	"github.com/cardboardcollective/mechabot/internal/courier"
	"github.com/cardboardcollective/mechabot/internal/trigger"
	"github.com/cardboardcollective/mechabot/internal/wizard"
)

// SessionTTL bounds how long an untouched show wizard stays alive.
const SessionTTL = 4 * time.Minute

// Discord is the slice of the session this feature needs on top of plain
// messaging: forum thread create/rename and starter-message edit.
type Discord interface {
	courier.Session
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelEdit(channelID string, data *discordgo.ChannelEdit, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ForumThreadStartComplex(channelID string, threadData *discordgo.ThreadStart, messageData *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// Feature owns the show-board wizard: collect five fields over a short
// conversation, create or update the user's forum post, persist the card,
// and clean up every interaction message.
type Feature struct {
	discord  Discord
	cfg      config.ShowBoardCfg
	store    *Store
	sessions *wizard.Store[Session]
	now      func() time.Time
}

func New(discord Discord, cfg config.ShowBoardCfg, store *Store) *Feature {
	return &Feature{
		discord:  discord,
		cfg:      cfg,
		store:    store,
		sessions: wizard.NewStore[Session](SessionTTL),
		now:      time.Now,
	}
}

// SweepSessions evicts expired wizard sessions.
func (f *Feature) SweepSessions() int {
	return f.sessions.Sweep()
}

func (f *Feature) HandleMessage(m *discordgo.MessageCreate) bool {
	if m.Author.Bot {
		return false
	}
	if m.GuildID == "" {
		// server-based feature
		return false
	}

	text := strings.TrimSpace(m.Content)
	lower := strings.ToLower(text)
	key := wizard.Key(m.GuildID, m.ChannelID, m.Author.ID)

	// Update serializes the whole answer transition per key, so concurrent
	// replies from one author in one channel advance the wizard one at a time.
	handled := false
	f.sessions.Update(key, func(existing Session, ok bool) (Session, bool) {
		if !ok {
			return existing, false
		}

		if trigger.IsCancel(lower) {
			handled = true
			existing.TrailID = append(existing.TrailID, m.ID)

			courier.PruneTrail(f.discord, m.ChannelID, existing.TrailID, "")
			if _, err := courier.DM(f.discord, m.Author.ID, "🧠🥞 Show wizard cancelled."); err != nil {
				log.Printf("showboard: cancel DM failed for %s: %v", m.Author.ID, err)
			}
			return existing, false
		}

		if !trigger.Is(lower) {
			handled = true
			existing.TrailID = append(existing.TrailID, m.ID)

			answeredStep := existing.Current()
			next := Apply(existing, text)

			if !next.Data.Complete() {
				f.promptStep(m, &next, next.Current())
				return next, true
			}

			// Completion can land before the optional link step; it is still
			// asked exactly once.
			if next.NeedsLinkPrompt(answeredStep) {
				f.promptStep(m, &next, StepLink)
				return next, true
			}

			f.finish(m, next)
			return next, false
		}

		// New command while mid-session: cancel session silently.
		return existing, false
	})
	if handled {
		return true
	}

	if !trigger.Is(lower) {
		return false
	}

	body := trigger.Body(lower)
	if body != "show" && !strings.HasPrefix(body, "show ") {
		return false
	}

	sess := Session{TrailID: []string{m.ID}}
	f.promptStep(m, &sess, StepName)
	f.sessions.Put(key, sess)
	return true
}

func (f *Feature) promptStep(m *discordgo.MessageCreate, sess *Session, step string) {
	promptMsg, err := courier.Reply(f.discord, m.Message, promptFor(step))
	if err != nil {
		log.Printf("showboard: prompt failed in %s: %v", m.ChannelID, err)
		return
	}
	sess.TrailID = append(sess.TrailID, promptMsg.ID)
}

// finish creates or updates the forum post, persists the card, DMs the
// receipt, and prunes the whole interaction trail.
func (f *Feature) finish(m *discordgo.MessageCreate, sess Session) {
	if f.cfg.ForumChannelID == "" {
		courier.PruneTrail(f.discord, m.ChannelID, sess.TrailID, "")
		f.dmQuiet(m.Author.ID, "🧠🥞 I can’t post your show yet: `config.showBoard.forumChannelId` is not set.")
		return
	}

	forum, err := f.discord.Channel(f.cfg.ForumChannelID)
	if err != nil || forum == nil || forum.Type != discordgo.ChannelTypeGuildForum {
		courier.PruneTrail(f.discord, m.ChannelID, sess.TrailID, "")
		f.dmQuiet(m.Author.ID, "🧠🥞 Forum channel ID is invalid or not a Forum channel.")
		return
	}

	doc := f.store.Load()
	record := FindUserShow(doc, m.GuildID, m.Author.ID)

	action := "Created"
	if record == nil {
		threadID, firstMessageID, err := f.createForumPost(sess.Data)
		if err != nil {
			f.reportPostFailure(m, sess, err)
			return
		}
		record = &Record{
			OwnerID:        m.Author.ID,
			ThreadID:       threadID,
			FirstMessageID: firstMessageID,
		}
		doc[m.GuildID] = append(doc[m.GuildID], record)
	} else {
		action = "Updated"
		if err := f.updateForumPost(record, sess.Data); err != nil {
			f.reportPostFailure(m, sess, err)
			return
		}
	}

	record.WhatnotName = sess.Data.WhatnotName
	record.Date = sess.Data.Date
	record.Time = sess.Data.Time
	record.Description = sess.Data.Description
	record.Link = sess.Data.Link
	record.UpdatedUTC = f.now().UTC().Format(time.RFC3339)

	if err := f.store.Save(doc); err != nil {
		log.Printf("showboard: save failed: %v", err)
		courier.PruneTrail(f.discord, m.ChannelID, sess.TrailID, "")
		f.dmQuiet(m.Author.ID, "🧠🥞 Something went wrong saving your show card. Please try again later.")
		return
	}

	threadURL := fmt.Sprintf("https://discord.com/channels/%s/%s", m.GuildID, record.ThreadID)
	if _, err := courier.DM(f.discord, m.Author.ID, receiptText(action, sess.Data, threadURL)); err != nil {
		// DMs closed: short in-channel notice, removed after a moment.
		if warn, rerr := courier.Reply(f.discord, m.Message, "🧠🥞 I posted/updated your show, but I couldn’t DM you (DMs closed)."); rerr == nil {
			courier.DeleteLater(f.discord, warn.ChannelID, warn.ID, 5*time.Second)
		}
	}

	courier.PruneTrail(f.discord, m.ChannelID, sess.TrailID, "")
}

func (f *Feature) reportPostFailure(m *discordgo.MessageCreate, sess Session, err error) {
	log.Printf("showboard: post failed: %v", err)
	courier.PruneTrail(f.discord, m.ChannelID, sess.TrailID, "")
	f.dmQuiet(m.Author.ID, fmt.Sprintf("🧠🥞 I couldn't create/update your show card. Error: %v", err))
}

func (f *Feature) dmQuiet(userID, content string) {
	if _, err := courier.DM(f.discord, userID, content); err != nil {
		log.Printf("showboard: DM failed for %s: %v", userID, err)
	}
}

// buildTitle renders the thread title: "WhatnotName : Date Time".
func buildTitle(d Fields) string {
	return fmt.Sprintf("%s : %s %s", d.WhatnotName, d.Date, d.Time)
}

// buildBody renders the starter message: description, then the link on its
// own line so the preview card shows.
func buildBody(d Fields) string {
	if d.Link == "" {
		return d.Description
	}
	return d.Description + "\n\n" + d.Link
}

func (f *Feature) createForumPost(d Fields) (threadID, firstMessageID string, err error) {
	thread, err := f.discord.ForumThreadStartComplex(
		f.cfg.ForumChannelID,
		&discordgo.ThreadStart{Name: buildTitle(d)},
		&discordgo.MessageSend{Content: buildBody(d)},
	)
	if err != nil {
		return "", "", fmt.Errorf("failed to create forum post: %w", err)
	}
	// The starter message of a forum post shares the thread's ID.
	return thread.ID, thread.ID, nil
}

func (f *Feature) updateForumPost(record *Record, d Fields) error {
	if _, err := f.discord.ChannelEdit(record.ThreadID, &discordgo.ChannelEdit{Name: buildTitle(d)}); err != nil {
		return fmt.Errorf("failed to rename thread: %w", err)
	}

	firstMessageID := record.FirstMessageID
	if firstMessageID == "" {
		firstMessageID = record.ThreadID
	}
	if _, err := f.discord.ChannelMessageEdit(record.ThreadID, firstMessageID, buildBody(d)); err != nil {
		return fmt.Errorf("failed to edit starter message: %w", err)
	}
	return nil
}

func receiptText(action string, d Fields, threadURL string) string {
	link := d.Link
	if link == "" {
		link = "(none)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**🧠🥞 Mecha Waffles — Show Card %s**\n", action)
	fmt.Fprintf(&b, "**Whatnot:** %s\n", d.WhatnotName)
	fmt.Fprintf(&b, "**When:** %s %s\n", d.Date, d.Time)
	fmt.Fprintf(&b, "**Description:** %s\n", d.Description)
	fmt.Fprintf(&b, "**Link:** %s\n", link)
	if threadURL != "" {
		fmt.Fprintf(&b, "\n**Forum Post:** %s\n", threadURL)
	}
	b.WriteString("\nIf you need to change anything, just run `mw show` again.")
	return b.String()
}
