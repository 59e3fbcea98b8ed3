package bot

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"

	tele "gopkg.in/telebot.v3"
)

type messageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// AlertDispatcher fans stale-dataset notices out to chats that opted in
// with /alerts on. Subscriptions live in memory only and reset on restart.
type AlertDispatcher struct {
	sender messageSender

	mu    sync.Mutex
	chats map[int64]struct{}
}

func NewAlertDispatcher(sender messageSender) *AlertDispatcher {
	return &AlertDispatcher{
		sender: sender,
		chats:  make(map[int64]struct{}),
	}
}

func (d *AlertDispatcher) Subscribe(chatID int64) bool   { return d.set(chatID, true) }
func (d *AlertDispatcher) Unsubscribe(chatID int64) bool { return d.set(chatID, false) }

// set flips a chat's subscription and reports whether anything changed.
func (d *AlertDispatcher) set(chatID int64, on bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, exists := d.chats[chatID]
	switch {
	case on && !exists:
		d.chats[chatID] = struct{}{}
	case !on && exists:
		delete(d.chats, chatID)
	default:
		return false
	}
	return true
}

func (d *AlertDispatcher) IsSubscribed(chatID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.chats[chatID]
	return ok
}

// BroadcastStaleCatalog tells every subscribed chat that the fund dataset
// has gone stale. Chats Telegram reports as gone are unsubscribed instead
// of being retried forever; other delivery failures are aggregated.
func (d *AlertDispatcher) BroadcastStaleCatalog(ageDays int) error {
	if d == nil || d.sender == nil {
		return nil
	}

	text := formatStaleAlert(ageDays)
	var errs []error
	for _, chatID := range d.snapshot() {
		_, err := d.sender.Send(&tele.Chat{ID: chatID}, text)
		switch {
		case err == nil:
		case chatGone(err):
			d.set(chatID, false)
			log.Printf("dropping alert subscription for chat %d: %v", chatID, err)
		default:
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

// snapshot returns the subscribed chat IDs in a stable order, so sends
// happen outside the lock.
func (d *AlertDispatcher) snapshot() []int64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids := make([]int64, 0, len(d.chats))
	for id := range d.chats {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// chatGone reports whether Telegram rejected the chat for good. Sends
// bounce with 403 once a chat blocks the bot or deletes its account,
// and with a 400 "chat not found" when the chat never existed.
func chatGone(err error) bool {
	var terr *tele.Error
	if !errors.As(err, &terr) {
		return false
	}
	return terr.Code == 403 ||
		(terr.Code == 400 && strings.Contains(terr.Description, "chat not found"))
}

var alertModes = map[string]bool{"on": true, "off": true, "status": true}

func parseAlertMode(args []string) (string, error) {
	if len(args) == 0 {
		return "status", nil
	}

	mode := strings.ToLower(strings.TrimSpace(args[0]))
	if !alertModes[mode] {
		return "", fmt.Errorf("unknown alerts mode %q", args[0])
	}
	return mode, nil
}

func formatStaleAlert(ageDays int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Heads up: our fund data is %d days old.\n", ageDays)
	b.WriteString("Recommendations may not reflect current returns; a refresh is on the way.\n")
	b.WriteString("Mute these notices with /alerts off.")
	return b.String()
}
