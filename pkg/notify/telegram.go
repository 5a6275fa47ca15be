package notify

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram caps a single message at 4096 characters.
const maxMessageLength = 4096

// Config enables run notifications. An empty token disables the
// notifier entirely; runs never fail because of it.
type Config struct {
	Token  string `yaml:"token" json:"token,optional"`
	ChatID int64  `yaml:"chat_id" json:"chat_id,optional"`
}

// Notifier posts short run results to a Telegram chat.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *log.Logger
}

// Option configures a new Notifier.
type Option func(*Notifier)

// WithLogger injects a custom logger (defaults to log.Default()).
func WithLogger(l *log.Logger) Option {
	return func(n *Notifier) {
		if l != nil {
			n.logger = l
		}
	}
}

// New constructs a Notifier. With no token, or when the bot handshake
// fails, the returned Notifier is a logged no-op.
func New(cfg *Config, opts ...Option) *Notifier {
	n := &Notifier{logger: log.Default()}
	for _, opt := range opts {
		opt(n)
	}
	if cfg == nil || cfg.Token == "" {
		n.logger.Printf("notify: no telegram token, notifications disabled")
		return n
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		n.logger.Printf("notify: telegram handshake failed, notifications disabled: %v", err)
		return n
	}
	n.bot = bot
	n.chatID = cfg.ChatID
	return n
}

// Enabled reports whether messages will actually be sent.
func (n *Notifier) Enabled() bool {
	return n != nil && n.bot != nil && n.chatID != 0
}

// Send posts text to the configured chat, truncating past the Telegram
// message limit. Disabled notifiers accept and drop everything.
func (n *Notifier) Send(text string) error {
	if !n.Enabled() {
		return nil
	}
	if len(text) > maxMessageLength {
		text = text[:maxMessageLength]
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("notify: send telegram message: %w", err)
	}
	return nil
}

// SnapshotWritten reports a finished snapshot run.
func (n *Notifier) SnapshotWritten(mode, date, path string, invalid, dryRun bool) error {
	return n.Send(SnapshotMessage(mode, date, path, invalid, dryRun))
}

// SnapshotMessage renders the run summary line.
func SnapshotMessage(mode, date, path string, invalid, dryRun bool) string {
	status := "ok"
	if invalid {
		status = "consistency check failed, values persisted anyway"
	}
	suffix := ""
	if dryRun {
		suffix = " (dry-run, not uploaded)"
	}
	return fmt.Sprintf("snapshot %s %s: %s -> %s%s", mode, date, status, path, suffix)
}
