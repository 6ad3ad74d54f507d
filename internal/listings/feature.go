package listings

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

// AnswerTimeout is the fixed window for every DM answer in this wizard.
const AnswerTimeout = 2 * time.Minute

// Discord adds guild-role lookup and embed posting on top of plain messaging.
type Discord interface {
	courier.Session
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Feature runs the sell/trade listing wizard over DM and posts the finished
// card to the trade channel.
type Feature struct {
	discord   Discord
	cfg       config.ListingsCfg
	store     *Store
	collector *courier.Collector
	now       func() time.Time
}

func New(discord Discord, cfg config.ListingsCfg, store *Store, collector *courier.Collector) *Feature {
	return &Feature{
		discord:   discord,
		cfg:       cfg,
		store:     store,
		collector: collector,
		now:       time.Now,
	}
}

// HandleMessage starts the wizard on `mw sell`, `mw trade`, or `mw list`.
// The whole conversation runs inline; discordgo dispatches each message event
// on its own goroutine, so blocking here never stalls other users.
func (f *Feature) HandleMessage(m *discordgo.MessageCreate) bool {
	if m.Author.Bot {
		return false
	}

	lower := strings.ToLower(strings.TrimSpace(m.Content))
	if !trigger.Is(lower) {
		return false
	}
	body := trigger.Body(lower)
	if body != "sell" && body != "trade" && body != "list" {
		return false
	}

	if m.GuildID == "" {
		f.reply(m, "Use `mw sell` in the server so I can verify your listing limits.")
		return true
	}

	if f.cfg.TradeChannelID == "" {
		f.reply(m, "⚠️ Listings are not configured yet (missing `listings.tradeChannelId` in config.json).")
		return true
	}

	doc := f.store.Load()
	limit := f.userLimit(m.GuildID, m.Author.ID)
	active := ActiveCount(doc, m.Author.ID)
	if active >= limit {
		f.reply(m, fmt.Sprintf("🚫 You already have **%d active listings**. Your limit is **%d**. Close or mark one sold to post a new one.", active, limit))
		return true
	}

	dm, err := f.discord.UserChannelCreate(m.Author.ID)
	if err != nil {
		f.reply(m, "⚠️ I couldn’t DM you. Please enable DMs from server members and try again.")
		return true
	}
	if _, err := f.discord.ChannelMessageSend(dm.ID, "🧠🥞 **Cardboard Collective Listing Wizard**\nReply to each question. Type `cancel` anytime to stop."); err != nil {
		f.reply(m, "⚠️ I couldn’t DM you. Please enable DMs from server members and try again.")
		return true
	}

	f.runWizard(m, dm.ID, doc)
	return true
}

// runWizard walks the DM conversation. Any timeout or cancel ends it with a
// short notice; nothing is persisted until the post succeeds.
func (f *Feature) runWizard(m *discordgo.MessageCreate, dmID string, doc Document) {
	ask := func(question string) (string, bool) {
		answer, err := f.ask(m.Author.ID, dmID, question)
		if err != nil {
			f.dm(dmID, "⏱️ Timed out. Start again with `mw sell`.")
			return "", false
		}
		return answer, true
	}

	typeAnswer, ok := ask("1) Listing type: reply with `FS`, `FT`, or `FS/FT`")
	if !ok {
		return
	}
	listingType := strings.ToUpper(typeAnswer)
	if listingType != "FS" && listingType != "FT" && listingType != "FS/FT" {
		f.dm(dmID, "Cancelled or invalid type. Start again with `mw sell`.")
		return
	}

	title, ok := ask("2) What are you listing? (short title)\nExample: `2024 Topps Chrome Marvel – Wolverine /99`")
	if !ok {
		return
	}
	if title == "" || strings.EqualFold(title, "cancel") {
		f.dm(dmID, "Cancelled.")
		return
	}

	description, ok := ask("3) Small description (1–2 sentences)")
	if !ok {
		return
	}
	if description == "" || strings.EqualFold(description, "cancel") {
		f.dm(dmID, "Cancelled.")
		return
	}

	shipAnswer, ok := ask("4) Shipping included? Reply `yes` or `no`")
	if !ok {
		return
	}
	shippingIncluded := strings.EqualFold(shipAnswer, "yes")

	shipMethod, ok := ask("5) Shipping method: `PWE`, `BMWT`, or `Either`")
	if !ok {
		return
	}
	shippingMethod := strings.ToUpper(shipMethod)

	payment, ok := ask("6) Payment methods (comma-separated)\nExample: `PayPal G&S, Venmo`")
	if !ok {
		return
	}

	location, ok := ask("7) Location/Region (optional) or type `skip`")
	if !ok {
		return
	}
	if strings.EqualFold(location, "skip") {
		location = ""
	}

	var price string
	var obo bool
	var tradeWants string

	if listingType == "FS" || listingType == "FS/FT" {
		price, ok = ask("8) Price (numbers only or include $). Example: `$85`")
		if !ok {
			return
		}
		if strings.EqualFold(price, "cancel") {
			return
		}

		oboAnswer, okAsk := ask("9) OBO? Reply `yes` or `no`")
		if !okAsk {
			return
		}
		obo = strings.EqualFold(oboAnswer, "yes")
	}

	if listingType == "FT" || listingType == "FS/FT" {
		tradeWants, ok = ask("10) Trade wants (what are you looking for?)")
		if !ok {
			return
		}
		if strings.EqualFold(tradeWants, "cancel") {
			return
		}
	}

	photos, cancelled := f.collectPhotos(m.Author.ID, dmID)
	if cancelled || len(photos) == 0 {
		f.dm(dmID, "Cancelled (photos are required).")
		return
	}

	listing := &Listing{
		SellerID:         m.Author.ID,
		Type:             listingType,
		Title:            title,
		Description:      description,
		Price:            price,
		OBO:              obo,
		TradeWants:       tradeWants,
		ShippingIncluded: shippingIncluded,
		ShippingMethod:   shippingMethod,
		Payment:          payment,
		Location:         location,
		Photos:           photos,
		Status:           StatusOpen,
	}

	post, err := f.postListing(m.Author.ID, listing)
	if err != nil {
		log.Printf("listings: post failed: %v", err)
		f.dm(dmID, "⚠️ I couldn’t find the trade channel. Ask an admin to check `tradeChannelId`.")
		return
	}

	listing.ID = post.ID
	listing.ChannelID = post.ChannelID
	listing.MessageID = post.ID
	listing.CreatedUTC = f.now().UTC().Format(time.RFC3339)
	doc.Listings = append(doc.Listings, listing)
	if err := f.store.Save(doc); err != nil {
		log.Printf("listings: save failed: %v", err)
	}

	postURL := fmt.Sprintf("https://discord.com/channels/%s/%s/%s", m.GuildID, post.ChannelID, post.ID)
	f.dm(dmID, "✅ Posted! Your listing is live here: "+postURL)
	f.reply(m, "✅ Check your DMs — your listing wizard is complete.")
}

// ask sends one question and blocks for the user's next DM inside the fixed
// answer window.
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

func isImage(a *discordgo.MessageAttachment) bool {
	return strings.HasPrefix(a.ContentType, "image/") || reImageURL.MatchString(a.URL)
}

// collectPhotos gathers one or two image attachments. skip and cancel both
// abort; after the first photo the user may reply `done` instead of sending a
// second.
func (f *Feature) collectPhotos(userID, dmID string) (photos []string, cancelled bool) {
	if _, err := f.discord.ChannelMessageSend(dmID, "📸 Send **1–2 photos** of the card (attach images). Type `skip` to cancel."); err != nil {
		return nil, true
	}

	deadline := time.Now().Add(AnswerTimeout)
	for len(photos) < 2 {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}

		msg, err := f.collector.Await(userID, dmID, remaining)
		if err != nil {
			break
		}

		content := strings.ToLower(strings.TrimSpace(msg.Content))
		if content == "skip" || content == "cancel" {
			return nil, true
		}
		if content == "done" && len(photos) > 0 {
			break
		}

		added := 0
		for _, a := range msg.Attachments {
			if !isImage(a) {
				continue
			}
			photos = append(photos, a.URL)
			added++
			if len(photos) >= 2 {
				break
			}
		}

		if len(photos) == 0 {
			f.dm(dmID, "⚠️ I didn’t detect an image attachment. Please attach a photo (or type `cancel`).")
		} else if added > 0 && len(photos) < 2 {
			f.dm(dmID, "✅ Got it. You can send **one more** photo, or type `done`.")
		}
	}

	return photos, false
}

// postListing renders the standardized embed and sends it to the trade
// channel. The first photo rides as the embed image.
func (f *Feature) postListing(sellerID string, l *Listing) (*discordgo.Message, error) {
	tags := []string{"`" + l.Type + "`", "`OPEN`"}
	if l.OBO {
		tags = append(tags, "`OBO`")
	}

	shipping := "Not included"
	if l.ShippingIncluded {
		shipping = "Included"
	}
	payment := l.Payment
	if payment == "" {
		payment = "Not specified"
	}

	var fields []*discordgo.MessageEmbedField
	if l.Price != "" {
		value := l.Price
		if l.OBO {
			value += " (OBO)"
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Price", Value: value, Inline: true})
	}
	if l.TradeWants != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Trade Wants", Value: l.TradeWants})
	}
	fields = append(fields,
		&discordgo.MessageEmbedField{Name: "Shipping", Value: shipping + " • " + l.ShippingMethod, Inline: true},
		&discordgo.MessageEmbedField{Name: "Payment", Value: payment, Inline: true},
	)
	if l.Location != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Location", Value: l.Location, Inline: true})
	}
	fields = append(fields,
		&discordgo.MessageEmbedField{Name: "Seller", Value: "<@" + sellerID + ">", Inline: true},
		&discordgo.MessageEmbedField{Name: "Status", Value: strings.Join(tags, " ")},
	)

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("[%s] %s", l.Type, l.Title),
		Description: l.Description,
		Fields:      fields,
		Image:       &discordgo.MessageEmbedImage{URL: l.Photos[0]},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Cardboard Collective • Reply in thread to claim or ask questions • Use /sold when complete",
		},
		Timestamp: f.now().UTC().Format(time.RFC3339),
	}

	return f.discord.ChannelMessageSendComplex(f.cfg.TradeChannelID, &discordgo.MessageSend{
		Content: "🧾 **New Listing** from <@" + sellerID + ">",
		Embeds:  []*discordgo.MessageEmbed{embed},
	})
}

// userLimit resolves the seller's active-listing cap from their roles. Lookup
// failures fall back to the standard limit.
func (f *Feature) userLimit(guildID, userID string) int {
	member, err := f.discord.GuildMember(guildID, userID)
	if err != nil || member == nil {
		return f.cfg.StandardLimit
	}

	roles, err := f.discord.GuildRoles(guildID)
	if err != nil {
		return f.cfg.StandardLimit
	}

	proRoleID := ""
	for _, r := range roles {
		if r.Name == f.cfg.ProRoleName {
			proRoleID = r.ID
			break
		}
	}
	if proRoleID == "" {
		return f.cfg.StandardLimit
	}

	for _, id := range member.Roles {
		if id == proRoleID {
			return f.cfg.ProLimit
		}
	}
	return f.cfg.StandardLimit
}

func (f *Feature) reply(m *discordgo.MessageCreate, content string) {
	if _, err := courier.Reply(f.discord, m.Message, content); err != nil {
		log.Printf("listings: reply failed in %s: %v", m.ChannelID, err)
	}
}

func (f *Feature) dm(dmID, content string) {
	if _, err := f.discord.ChannelMessageSend(dmID, content); err != nil {
		log.Printf("listings: DM failed in %s: %v", dmID, err)
	}
}
