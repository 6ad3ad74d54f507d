package hits

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cardboardcollective/mechabot/internal/config"
	"github.com/cardboardcollective/mechabot/internal/courier"
	"github.com/cardboardcollective/mechabot/internal/trigger"
)

// AnswerTimeout is the fixed window for each DM answer.
const AnswerTimeout = 2 * time.Minute

// Discord adds embed posting on top of plain messaging.
type Discord interface {
	courier.Session
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Feature runs the two-question hit wizard: a title and one photo, posted as
// an embed to the hits feed channel.
type Feature struct {
	discord   Discord
	cfg       config.HitsCfg
	store     *Store
	collector *courier.Collector
	now       func() time.Time
}

func New(discord Discord, cfg config.HitsCfg, store *Store, collector *courier.Collector) *Feature {
	return &Feature{
		discord:   discord,
		cfg:       cfg,
		store:     store,
		collector: collector,
		now:       time.Now,
	}
}

func (f *Feature) HandleMessage(m *discordgo.MessageCreate) bool {
	if m.Author.Bot {
		return false
	}

	lower := strings.ToLower(strings.TrimSpace(m.Content))
	if !trigger.Is(lower) || trigger.Body(lower) != "hit" {
		return false
	}

	if f.cfg.HitsChannelID == "" {
		f.reply(m, "⚠️ Hits are not configured yet (missing `hits.hitsChannelId` in config.json).")
		return true
	}

	dm, err := f.discord.UserChannelCreate(m.Author.ID)
	if err != nil {
		f.reply(m, "⚠️ I couldn’t DM you. Please enable DMs from server members and try again.")
		return true
	}
	if _, err := f.discord.ChannelMessageSend(dm.ID, "🔥 **Hit Post Wizard**\nType `cancel` anytime to stop."); err != nil {
		f.reply(m, "⚠️ I couldn’t DM you. Please enable DMs from server members and try again.")
		return true
	}

	f.runWizard(m, dm.ID)
	return true
}

func (f *Feature) runWizard(m *discordgo.MessageCreate, dmID string) {
	title, err := f.ask(m.Author.ID, dmID, "1) What’s the hit? (short title)\nExample: `Wolverine /99 Color Match`")
	if err != nil {
		f.dm(dmID, "⏱️ Timed out. Start again with `mw hit`.")
		return
	}
	if title == "" || strings.EqualFold(title, "cancel") {
		return
	}

	if _, err := f.discord.ChannelMessageSend(dmID, "2) Send **one photo** of the hit (attach an image)."); err != nil {
		return
	}
	photoMsg, err := f.collector.Await(m.Author.ID, dmID, AnswerTimeout)
	if err != nil {
		f.dm(dmID, "⏱️ Timed out. Start again with `mw hit`.")
		return
	}

	imageURL := firstImageURL(photoMsg)
	if imageURL == "" {
		f.dm(dmID, "⚠️ No image detected. Start again with `mw hit`.")
		return
	}

	post, err := f.postHit(m.Author.ID, title, imageURL)
	if err != nil {
		log.Printf("hits: post failed: %v", err)
		f.dm(dmID, "⚠️ I couldn’t find the hits channel. Ask an admin to check `hitsChannelId`.")
		return
	}

	doc := f.store.Load()
	doc.Hits = append(doc.Hits, &Hit{
		ID:         post.ID,
		ChannelID:  post.ChannelID,
		MessageID:  post.ID,
		UserID:     m.Author.ID,
		Title:      title,
		ImageURL:   imageURL,
		CreatedUTC: f.now().UTC().Format(time.RFC3339),
	})
	if err := f.store.Save(doc); err != nil {
		log.Printf("hits: save failed: %v", err)
	}

	postURL := fmt.Sprintf("https://discord.com/channels/%s/%s/%s", m.GuildID, post.ChannelID, post.ID)
	f.dm(dmID, "✅ Posted! "+postURL)
	f.reply(m, "✅ Hit posted.")
}

func (f *Feature) ask(userID, dmID, question string) (string, error) {
	if _, err := f.discord.ChannelMessageSend(dmID, question); err != nil {
		return "", err
	}
	answer, err := f.collector.Await(userID, dmID, AnswerTimeout)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer.Content), nil
}

var reImageURL = regexp.MustCompile(`(?i)\.(png|jpe?g|webp|gif)$`)

func firstImageURL(m *discordgo.Message) string {
	for _, a := range m.Attachments {
		if strings.HasPrefix(a.ContentType, "image/") || reImageURL.MatchString(a.URL) {
			return a.URL
		}
	}
	return ""
}

func (f *Feature) postHit(userID, title, imageURL string) (*discordgo.Message, error) {
	embed := &discordgo.MessageEmbed{
		Title:       "🔥 HIT: " + title,
		Description: "Posted by <@" + userID + ">",
		Image:       &discordgo.MessageEmbedImage{URL: imageURL},
		Footer:      &discordgo.MessageEmbedFooter{Text: "Cardboard Collective • Hits Feed"},
		Timestamp:   f.now().UTC().Format(time.RFC3339),
	}
	return f.discord.ChannelMessageSendComplex(f.cfg.HitsChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
}

func (f *Feature) reply(m *discordgo.MessageCreate, content string) {
	if _, err := courier.Reply(f.discord, m.Message, content); err != nil {
		log.Printf("hits: reply failed in %s: %v", m.ChannelID, err)
	}
}

func (f *Feature) dm(dmID, content string) {
	if _, err := f.discord.ChannelMessageSend(dmID, content); err != nil {
		log.Printf("hits: DM failed in %s: %v", dmID, err)
	}
}
