// Package courier wraps the slice of the Discord session the features need:
// message delivery with DM fallback, best-effort trail pruning, and timed
// collection of direct-message answers.
package courier

import (
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Session is the minimal messaging surface consumed here. *discordgo.Session
// satisfies it; tests supply fakes.
type Session interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// SafeDelete deletes one message, swallowing and logging any failure.
func SafeDelete(s Session, channelID, messageID string) bool {
	if err := s.ChannelMessageDelete(channelID, messageID); err != nil {
		log.Printf("courier: delete failed for %s/%s: %v", channelID, messageID, err)
		return false
	}
	return true
}

// PruneTrail attempts fetch-then-delete for every non-empty identifier in the
// trail. A failure on one identifier never aborts the rest. keepID, when
// non-empty, names a message excluded from pruning.
func PruneTrail(s Session, channelID string, messageIDs []string, keepID string) {
	for _, id := range messageIDs {
		if id == "" {
			continue
		}
		if keepID != "" && id == keepID {
			continue
		}
		if _, err := s.ChannelMessage(channelID, id); err != nil {
			// already deleted / not fetchable
			continue
		}
		SafeDelete(s, channelID, id)
	}
}

// Reply sends a reply to msg in its original channel.
func Reply(s Session, msg *discordgo.Message, content string) (*discordgo.Message, error) {
	return s.ChannelMessageSendReply(msg.ChannelID, content, msg.Reference())
}

// DM sends content to the user's direct-message channel.
func DM(s Session, userID, content string) (*discordgo.Message, error) {
	dm, err := s.UserChannelCreate(userID)
	if err != nil {
		return nil, err
	}
	return s.ChannelMessageSend(dm.ID, content)
}

// DMOrFallback tries to DM the author of msg; when DMs are closed it falls
// back to an in-context reply carrying the same content and schedules the
// warn reply for deletion. Returns true when the DM itself went through.
func DMOrFallback(s Session, msg *discordgo.Message, content string) bool {
	if _, err := DM(s, msg.Author.ID, content); err == nil {
		return true
	}

	warn, err := Reply(s, msg, "🧠🥞 I tried to DM you but your DMs are closed. Here it is:\n\n"+content)
	if err != nil {
		log.Printf("courier: fallback reply failed in %s: %v", msg.ChannelID, err)
		return false
	}
	DeleteLater(s, warn.ChannelID, warn.ID, 30*time.Second)
	return false
}

// DeleteLater schedules a best-effort delete of one message.
func DeleteLater(s Session, channelID, messageID string, after time.Duration) {
	time.AfterFunc(after, func() {
		SafeDelete(s, channelID, messageID)
	})
}
