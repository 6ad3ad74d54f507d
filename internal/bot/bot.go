package bot

import (
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/cardboardcollective/mechabot/internal/breakdown"
	"github.com/cardboardcollective/mechabot/internal/config"
	"github.com/cardboardcollective/mechabot/internal/courier"
	"github.com/cardboardcollective/mechabot/internal/hits"
	"github.com/cardboardcollective/mechabot/internal/jsonstore"
	"github.com/cardboardcollective/mechabot/internal/listings"
	"github.com/cardboardcollective/mechabot/internal/showboard"
	"github.com/cardboardcollective/mechabot/internal/trigger"
)

// Feature is one message-driven feature. HandleMessage returns true when the
// message belonged to it and routing should stop.
type Feature interface {
	HandleMessage(m *discordgo.MessageCreate) bool
}

type Bot struct {
	session   *discordgo.Session
	messenger courier.Session
	collector *courier.Collector
	features  []Feature
	janitor   *janitor
}

func New(cfg *config.Config, files *jsonstore.Store) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	collector := courier.NewCollector()

	bot := &Bot{
		session:   session,
		messenger: session,
		collector: collector,
		// Routing order matters: the show wizard claims its answers before the
		// breakdown wizard sees them.
		features: []Feature{
			showboard.New(session, cfg.Features.ShowBoard, showboard.NewStore(files)),
			breakdown.New(session, cfg.FeeSchedule()),
			listings.New(session, cfg.Features.Listings, listings.NewStore(files), collector),
			hits.New(session, cfg.Features.Hits, hits.NewStore(files), collector),
		},
	}

	var sweepers []sessionSweeper
	for _, f := range bot.features {
		if s, ok := f.(sessionSweeper); ok {
			sweepers = append(sweepers, s)
		}
	}
	bot.janitor = newJanitor(sweepers)

	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onMessageCreate)

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	return bot, nil
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	b.janitor.start()
	log.Println("Discord bot is running")
	return nil
}

func (b *Bot) Stop() error {
	b.janitor.stop()
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Printf("🧠🥞 READY: logged in as %s", event.User.Username)
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore bot messages
	if m.Author.Bot {
		return
	}
	b.route(m)
}

// route hands the message to a blocked DM wizard first, then to the features
// in order, then to the help fallback.
func (b *Bot) route(m *discordgo.MessageCreate) {
	if b.collector.Offer(m.Message) {
		return
	}

	for _, f := range b.features {
		if f.HandleMessage(m) {
			return
		}
	}

	lower := strings.ToLower(strings.TrimSpace(m.Content))
	if !trigger.Is(lower) {
		return
	}

	help := "🧠🥞 Commands:\n" +
		"• `mw show` (create/update your show card)\n" +
		"• `mw breakdown 75 spots 3 boxes at 92 each`\n" +
		"• `mw sell` / `mw trade` (post a listing)\n" +
		"• `mw hit` (share a hit)"
	if _, err := courier.Reply(b.messenger, m.Message, help); err != nil {
		log.Printf("bot: help reply failed in %s: %v", m.ChannelID, err)
	}
}
