package breakdown

import (
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cardboardcollective/mechabot/internal/config"
	"github.com/cardboardcollective/mechabot/internal/courier"
	"github.com/cardboardcollective/mechabot/internal/trigger"
	"github.com/cardboardcollective/mechabot/internal/wizard"
)

// SessionTTL bounds how long an untouched breakdown wizard stays alive.
const SessionTTL = 2 * time.Minute

// Feature owns the breakdown command: parse, wizard, calculate, DM, prune.
type Feature struct {
	discord  courier.Session
	fees     config.FeeSchedule
	sessions *wizard.Store[Session]
}

func New(discord courier.Session, fees config.FeeSchedule) *Feature {
	return &Feature{
		discord:  discord,
		fees:     fees,
		sessions: wizard.NewStore[Session](SessionTTL),
	}
}

// SweepSessions evicts expired wizard sessions that were never looked up
// again after their TTL lapsed.
func (f *Feature) SweepSessions() int {
	return f.sessions.Sweep()
}

// HandleMessage routes one inbound message. Returns true when the message
// belonged to this feature.
func (f *Feature) HandleMessage(m *discordgo.MessageCreate) bool {
	if m.Author.Bot {
		return false
	}

	text := strings.TrimSpace(m.Content)
	lower := strings.ToLower(text)
	key := wizard.Key(m.Author.ID)

	// An active wizard claims any non-command reply. The whole look-up,
	// advance, and write-back runs as one Update transaction so two answers
	// arriving together cannot both see the same step. Expired sessions are
	// evicted by the store on the lookup inside Update.
	handled := false
	f.sessions.Update(key, func(existing Session, ok bool) (Session, bool) {
		if !ok {
			return existing, false
		}

		if trigger.IsCancel(lower) {
			handled = true
			existing.TrailID = append(existing.TrailID, m.ID)

			keepID := ""
			if done, err := courier.Reply(f.discord, m.Message, "🧠🥞 Cancelled."); err == nil {
				keepID = done.ID
			}
			courier.PruneTrail(f.discord, m.ChannelID, existing.TrailID, keepID)
			return existing, false
		}

		if !trigger.Is(lower) {
			handled = true
			existing.TrailID = append(existing.TrailID, m.ID)

			next := Advance(existing, text)
			if next.Done() {
				result := Calculate(next.Data, f.fees)
				courier.DMOrFallback(f.discord, m.Message, FormatReport(result))
				return next, false
			}

			f.prompt(m, &next)
			return next, true
		}

		// New top-level command supersedes the wizard silently.
		return existing, false
	})
	if handled {
		return true
	}

	if !trigger.Is(lower) {
		return false
	}

	lowerBody := trigger.Body(lower)
	rawBody := trigger.Body(text)

	if lowerBody == "cancel" {
		if _, err := courier.Reply(f.discord, m.Message, "🧠🥞 Nothing to cancel right now."); err != nil {
			log.Printf("breakdown: reply failed: %v", err)
		}
		return true
	}

	if !strings.Contains(lowerBody, "breakdown") {
		return false
	}

	parsed := Extract(rawBody)

	// Fully specified: answer immediately, no wizard.
	if len(parsed.Missing) == 0 {
		result := Calculate(parsed.Data, f.fees)

		// delete the command message to avoid clutter (best effort)
		courier.SafeDelete(f.discord, m.ChannelID, m.ID)
		courier.DMOrFallback(f.discord, m.Message, FormatReport(result))
		return true
	}

	sess := StartWizard(parsed.Data)
	sess.TrailID = append(sess.TrailID, m.ID)
	sess.OriginGuildID = m.GuildID
	sess.OriginChannelID = m.ChannelID

	courier.SafeDelete(f.discord, m.ChannelID, m.ID)
	f.prompt(m, &sess)
	f.sessions.Put(key, sess)
	return true
}

// prompt delivers the session's current question over DM, falling back to an
// in-context reply when the recipient's DMs are closed. The delivered message
// joins the trail.
func (f *Feature) prompt(m *discordgo.MessageCreate, sess *Session) {
	if dmMsg, err := courier.DM(f.discord, m.Author.ID, sess.Prompt); err == nil {
		sess.TrailID = append(sess.TrailID, dmMsg.ID)
		return
	}

	reply, err := courier.Reply(f.discord, m.Message, sess.Prompt)
	if err != nil {
		log.Printf("breakdown: prompt delivery failed for %s: %v", m.Author.ID, err)
		return
	}
	sess.TrailID = append(sess.TrailID, reply.ID)
}
