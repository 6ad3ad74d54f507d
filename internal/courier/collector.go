package courier

import (
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// ErrAwaitTimeout is returned when no answer arrived inside the wait window.
var ErrAwaitTimeout = errors.New("timed out waiting for an answer")

// Collector hands inbound messages to wizards blocked on an answer. A waiter
// is keyed by (author, channel) so a wizard only ever sees its own user's
// messages in the DM channel it opened.
type Collector struct {
	mu      sync.Mutex
	waiters map[string]chan *discordgo.Message
}

func NewCollector() *Collector {
	return &Collector{waiters: make(map[string]chan *discordgo.Message)}
}

func waiterKey(userID, channelID string) string {
	return userID + ":" + channelID
}

// Offer routes a message to a blocked waiter, if any. Returns true when the
// message was consumed by a wizard.
func (c *Collector) Offer(m *discordgo.Message) bool {
	c.mu.Lock()
	ch, ok := c.waiters[waiterKey(m.Author.ID, m.ChannelID)]
	if ok {
		delete(c.waiters, waiterKey(m.Author.ID, m.ChannelID))
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	ch <- m
	return true
}

// Await blocks until the user sends a message in the channel or the timeout
// elapses. Every external wait in the bot runs through this fixed window;
// there is no infinite wait.
func (c *Collector) Await(userID, channelID string, timeout time.Duration) (*discordgo.Message, error) {
	ch := make(chan *discordgo.Message, 1)
	key := waiterKey(userID, channelID)

	c.mu.Lock()
	c.waiters[key] = ch
	c.mu.Unlock()

	select {
	case m := <-ch:
		return m, nil
	case <-time.After(timeout):
		c.mu.Lock()
		delete(c.waiters, key)
		c.mu.Unlock()
		// A message may have slipped in while we were timing out.
		select {
		case m := <-ch:
			return m, nil
		default:
		}
		return nil, ErrAwaitTimeout
	}
}
