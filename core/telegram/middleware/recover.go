// Package middleware holds the global Telebot middlewares of the transport.
package middleware

import (
	"context"
	"log/slog"
	"runtime/debug"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/convocore/core/logger"
)

// Recover catches panics escaping the transport layer so one update cannot
// take the polling loop down. Engine handlers have their own containment;
// this is the outermost net.
func Recover(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(context.Background(), "tg", "tg.panic",
					slog.Any("error", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()
		return next(c)
	}
}
