package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/convocore/core/logger"
)

// ContextKey is the tele.Context storage key under which the enriched
// context.Context is exposed to downstream handlers.
const ContextKey = "engine_ctx"

// recentUpdates keeps a short-lived set of processed update IDs to avoid
// double logging when the middleware runs on several branches.
var (
	recentMu     sync.Mutex
	recentUpdate = make(map[int]time.Time)
	keepFor      = 10 * time.Second
)

func alreadyLogged(updateID int) bool {
	now := time.Now()
	recentMu.Lock()
	defer recentMu.Unlock()
	for id, ts := range recentUpdate {
		if now.Sub(ts) > keepFor {
			delete(recentUpdate, id)
		}
	}
	if _, ok := recentUpdate[updateID]; ok {
		return true
	}
	recentUpdate[updateID] = now
	return false
}

// Logging derives the request correlation id, attaches message metadata to
// a context.Context stored on the tele.Context, and logs one receipt line
// per update.
func Logging(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		user := c.Sender()
		chat := c.Chat()

		chatID := int64(0)
		if chat != nil {
			chatID = chat.ID
		}
		platformID := ""
		if user != nil {
			platformID = strconv.FormatInt(user.ID, 10)
		}

		rid := logger.BuildRID(upd.ID, chatID, platformID)
		ctx := logger.WithRID(logger.Background(), rid)
		ctx = logger.WithMessageMeta(ctx, upd.ID, platformID, chatID)
		ctx = logger.WithLogger(ctx, logger.Component("tg"))
		c.Set(ContextKey, ctx)

		if logger.ShouldSampleDebug() && !alreadyLogged(upd.ID) {
			attrs := []slog.Attr{
				slog.String("status", "ok"),
				slog.String("rid", rid),
				slog.Int("update_id", upd.ID),
			}
			if chatID != 0 {
				attrs = append(attrs, slog.Int64("chat_id", chatID))
			}
			if user != nil {
				attrs = append(attrs, slog.String("platform_id", platformID))
				if user.Username != "" {
					attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
				}
				if user.LanguageCode != "" {
					attrs = append(attrs, slog.String("lang", user.LanguageCode))
				}
			}
			if t := c.Text(); t != "" {
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
			}
			logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", attrs...)
		}

		return next(c)
	}
}

// ContextFrom extracts the context stored by Logging, falling back to a
// fresh background context when the middleware did not run.
func ContextFrom(c tele.Context) context.Context {
	if v := c.Get(ContextKey); v != nil {
		if stored, ok := v.(context.Context); ok {
			return stored
		}
	}
	return logger.Background()
}
