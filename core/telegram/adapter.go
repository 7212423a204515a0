package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/convocore/core/engine"
	"github.com/m3rciful/convocore/core/logger"
	tgmiddleware "github.com/m3rciful/convocore/core/telegram/middleware"
	tgsender "github.com/m3rciful/convocore/core/telegram/sender"
)

// fallbackReplies is sent when no command consumed the message. Keyed by
// primary locale subtag.
var fallbackReplies = map[string]string{
	"en": "I did not understand that. Try /help.",
	"ru": "Я не понял. Попробуйте /help.",
}

// Gateway converts Telebot updates into engine messages and engine replies
// back into Telegram sends.
type Gateway struct {
	Dispatcher *engine.Dispatcher
	// DefaultLocale picks the fallback reply when the sender carries no
	// language code.
	DefaultLocale string
	// DisableFallback suppresses the default reply on unhandled messages.
	DisableFallback bool

	bot    *tele.Bot
	sender *tgsender.Sender
}

// NewGateway binds an engine dispatcher to a bot and an outbound queue.
// The gateway installs itself as the dispatcher's replier.
func NewGateway(d *engine.Dispatcher, bot *tele.Bot, s *tgsender.Sender, defaultLocale string) *Gateway {
	g := &Gateway{
		Dispatcher:    d,
		DefaultLocale: defaultLocale,
		bot:           bot,
		sender:        s,
	}
	d.Replier = g
	return g
}

// HandleText is the tele.OnText route: it translates the update and runs
// one full dispatch. The returned error is always nil; dispatch failures
// are contained inside the engine.
func (g *Gateway) HandleText(c tele.Context) error {
	ctx := tgmiddleware.ContextFrom(c)
	msg := buildMessage(c)
	if msg.Identity.ID == "" {
		logger.Debug(ctx, "tg", "update.skip",
			slog.String("cause", "no sender"),
		)
		return nil
	}

	outcome := g.Dispatcher.Dispatch(ctx, msg)
	if (outcome == engine.OutcomeUnhandled || outcome == engine.OutcomeAmbiguous) && !g.DisableFallback {
		g.sendFallback(ctx, msg)
	}
	return nil
}

// buildMessage maps a Telebot update onto the engine's transport-neutral
// message shape. The platform identity is the numeric Telegram user id
// rendered as a string; raw user fields travel in the identity metadata
// and end up refreshed into the session info.
func buildMessage(c tele.Context) engine.Message {
	user := c.Sender()
	if user == nil {
		return engine.Message{}
	}

	meta := map[string]any{
		"first_name": user.FirstName,
	}
	if user.LastName != "" {
		meta["last_name"] = user.LastName
	}
	if user.Username != "" {
		meta["username"] = user.Username
	}
	if user.LanguageCode != "" {
		meta["language_code"] = user.LanguageCode
	}
	if chat := c.Chat(); chat != nil {
		meta["chat_id"] = chat.ID
	}

	return engine.Message{
		Identity: engine.Identity{
			ID:   strconv.FormatInt(user.ID, 10),
			Meta: meta,
		},
		Text:   c.Text(),
		Locale: user.LanguageCode,
	}
}

// Send implements engine.Replier by enqueueing an asynchronous Telegram
// send. Delivery failures are retried and logged by the sender queue.
func (g *Gateway) Send(ctx context.Context, identity engine.Identity, content string) error {
	recipient, err := recipientFor(ctx, identity)
	if err != nil {
		return err
	}
	bot := g.bot
	return g.sender.Enqueue(ctx, "sendMessage", func() error {
		_, err := bot.Send(recipient, content)
		return err
	})
}

// recipientFor resolves where the reply goes: the originating chat when
// known, the private chat of the identity otherwise.
func recipientFor(ctx context.Context, identity engine.Identity) (tele.Recipient, error) {
	if chatID, ok := identity.Meta["chat_id"].(int64); ok && chatID != 0 {
		return tele.ChatID(chatID), nil
	}
	if chatID := logger.ChatIDFrom(ctx); chatID != 0 {
		return tele.ChatID(chatID), nil
	}
	id, err := strconv.ParseInt(strings.TrimSpace(identity.ID), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("telegram: unresolvable recipient %q: %w", identity.ID, err)
	}
	return tele.ChatID(id), nil
}

func (g *Gateway) sendFallback(ctx context.Context, msg engine.Message) {
	reply := localizedFallback(msg.Locale, g.DefaultLocale)
	if err := g.Send(ctx, msg.Identity, reply); err != nil {
		logger.Warn(ctx, "tg", "fallback.send.fail",
			slog.String("error", err.Error()),
		)
	}
}

func localizedFallback(locale, fallback string) string {
	for _, loc := range []string{locale, fallback} {
		if loc == "" {
			continue
		}
		if len(loc) > 2 {
			loc = loc[:2]
		}
		if r, ok := fallbackReplies[strings.ToLower(loc)]; ok {
			return r
		}
	}
	return fallbackReplies["en"]
}
