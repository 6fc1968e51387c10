package feishu

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/groupmute/groupmute/internal/biz/domain"
	"github.com/groupmute/groupmute/internal/logger"
)

// TextSender sends a text message to a chat
type TextSender interface {
	SendText(ctx context.Context, chatID, text string) error
}

// Relay posts accepted mute log entries to a Feishu chat.
// Entries arriving faster than the limit are dropped.
type Relay struct {
	sender  TextSender
	chatID  string
	limiter *rate.Limiter
	loc     *time.Location
	log     *logger.Logger
}

// NewRelay creates a relay allowing perMinute messages per minute (minimum 1)
func NewRelay(sender TextSender, chatID string, perMinute int, loc *time.Location, log *logger.Logger) *Relay {
	if perMinute < 1 {
		perMinute = 1
	}
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Relay{
		sender:  sender,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		loc:     loc,
		log:     log.Component("feishu-relay"),
	}
}

// Run relays entries until the channel closes or ctx is done
func (r *Relay) Run(ctx context.Context, entries <-chan domain.MuteLogEntry) {
	r.log.Info("Relay started", "chat_id", r.chatID)
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-entries:
			if !ok {
				return
			}
			r.relay(ctx, entry)
		}
	}
}

func (r *Relay) relay(ctx context.Context, entry domain.MuteLogEntry) {
	if !r.limiter.Allow() {
		r.log.Warn("Relay rate limited, entry dropped", "group", entry.GroupName)
		return
	}
	if err := r.sender.SendText(ctx, r.chatID, FormatEntry(entry, r.loc)); err != nil {
		r.log.Error(err, "Failed to relay mute log entry", "group", entry.GroupName)
	}
}

// FormatEntry renders an entry as a one-line chat message
func FormatEntry(entry domain.MuteLogEntry, loc *time.Location) string {
	at := entry.Time().In(loc).Format("15:04")
	if entry.MessageText == "" {
		return fmt.Sprintf("[%s] %s %s", at, entry.Status, entry.GroupName)
	}
	return fmt.Sprintf("[%s] %s %s: %s", at, entry.Status, entry.GroupName, entry.MessageText)
}
