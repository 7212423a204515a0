package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/convocore/core/logger"
)

// Outcome classifies what one dispatch did with its message. The transport
// may react to Unhandled with a default reply; Failed already produced a
// best-effort error reply.
type Outcome string

const (
	OutcomeHandled   Outcome = "handled"
	OutcomeUnhandled Outcome = "unhandled"
	OutcomeAmbiguous Outcome = "ambiguous"
	OutcomeFailed    Outcome = "failed"
)

// errorReplies is the generic failure reply per primary locale subtag.
var errorReplies = map[string]string{
	"en": "Something went wrong, please try again later.",
	"ru": "Что-то пошло не так, попробуйте позже.",
}

// Dispatcher is the per-message orchestrator: it hydrates the session, runs
// a pending continuation or command matching, and persists the session
// afterwards. Failures are contained per message; nothing escapes Dispatch.
type Dispatcher struct {
	// Table is the registered command set.
	Table *Table
	// Callbacks owns pending single-use continuations.
	Callbacks *CallbackRegistry
	// Bridge persists sessions between messages.
	Bridge *Bridge
	// Replier delivers the generic error reply on handler failure. May be
	// nil, in which case failures are only logged.
	Replier Replier
	// DefaultLocale picks the error reply when the message carries none.
	DefaultLocale string

	locks keyLock
}

// NewDispatcher wires a dispatcher from its collaborators.
func NewDispatcher(table *Table, callbacks *CallbackRegistry, bridge *Bridge, replier Replier, defaultLocale string) *Dispatcher {
	return &Dispatcher{
		Table:         table,
		Callbacks:     callbacks,
		Bridge:        bridge,
		Replier:       replier,
		DefaultLocale: defaultLocale,
	}
}

// Await registers fn to receive the next message of the handler's session,
// bypassing command matching. It returns the issued token.
func (d *Dispatcher) Await(hctx *Context, fn Continuation) string {
	return d.Callbacks.Register(hctx.Session, fn)
}

// Reply sends content back to the message's identity.
func (d *Dispatcher) Reply(hctx *Context, content string) error {
	if d.Replier == nil {
		return nil
	}
	return d.Replier.Send(hctx.Ctx, hctx.Message.Identity, content)
}

// Dispatch processes one inbound message to completion. Messages from the
// same identity are serialized; distinct identities proceed concurrently.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) Outcome {
	started := time.Now()
	if msg.Identity.ID == "" {
		logger.Warn(ctx, "engine", "dispatch.drop",
			slog.String("cause", "empty identity"),
		)
		return OutcomeFailed
	}

	unlock := d.locks.Lock(msg.Identity.ID)
	defer unlock()

	sess := d.hydrate(ctx, msg)
	outcome := d.process(ctx, msg, sess)
	d.persist(ctx, msg, sess)

	logger.Debug(ctx, "engine", "dispatch.done",
		slog.String("platform_id", msg.Identity.ID),
		slog.String("outcome", string(outcome)),
		slog.Duration("duration", logger.Took(started)),
	)
	return outcome
}

// hydrate loads or creates the session. A repository outage degrades to a
// transient session so message handling keeps working without storage.
func (d *Dispatcher) hydrate(ctx context.Context, msg Message) *Session {
	sess, err := d.Bridge.Find(ctx, msg.Identity)
	if err != nil {
		logger.Warn(ctx, "engine.session", "session.find.degraded",
			slog.String("platform_id", msg.Identity.ID),
			slog.String("error", err.Error()),
		)
		sess, err = d.Bridge.Create(msg.Identity)
		if err != nil {
			return nil
		}
	}
	return sess
}

func (d *Dispatcher) process(ctx context.Context, msg Message, sess *Session) Outcome {
	if sess == nil {
		return OutcomeFailed
	}

	hctx := &Context{
		Ctx:        ctx,
		Dispatcher: d,
		Message:    msg,
		Session:    sess,
	}

	// A pending continuation owns the next message outright; command
	// matching is skipped even when the continuation declines it.
	if fn := d.Callbacks.Consume(sess); fn != nil {
		consumed, err := d.run(ctx, msg, "", func() (bool, error) { return fn(hctx) })
		if err != nil {
			d.replyError(ctx, msg)
			return OutcomeFailed
		}
		if !consumed {
			return OutcomeUnhandled
		}
		return OutcomeHandled
	}

	cmd, match, err := d.Table.Match(msg.Text, msg.Locale)
	switch {
	case errors.Is(err, ErrAmbiguous):
		logger.Info(ctx, "engine", "dispatch.ambiguous",
			slog.String("platform_id", msg.Identity.ID),
		)
		return OutcomeAmbiguous
	case err != nil:
		return OutcomeUnhandled
	}

	hctx.Match = match
	consumed, err := d.run(ctx, msg, cmd.Name, func() (bool, error) { return cmd.Handler(hctx) })
	if err != nil {
		d.replyError(ctx, msg)
		return OutcomeFailed
	}
	if !consumed {
		return OutcomeUnhandled
	}
	return OutcomeHandled
}

// run executes a handler or continuation, converting panics into errors so
// one misbehaving handler cannot take down the dispatch loop.
func (d *Dispatcher) run(ctx context.Context, msg Message, command string, fn func() (bool, error)) (consumed bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
		if err != nil {
			logger.Error(ctx, "engine", "dispatch.handler.fail",
				slog.String("platform_id", msg.Identity.ID),
				slog.String("command", command),
				slog.String("error", err.Error()),
			)
		}
	}()
	return fn()
}

// persist saves the session after every message so info refresh always
// lands, whatever the outcome was. Save failures are logged and swallowed.
func (d *Dispatcher) persist(ctx context.Context, msg Message, sess *Session) {
	if sess == nil {
		return
	}
	if err := d.Bridge.Save(ctx, sess); err != nil {
		logger.Error(ctx, "engine.session", "session.save.fail",
			slog.String("platform_id", msg.Identity.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (d *Dispatcher) replyError(ctx context.Context, msg Message) {
	if d.Replier == nil {
		return
	}
	reply := errorReply(msg.Locale, d.DefaultLocale)
	if err := d.Replier.Send(ctx, msg.Identity, reply); err != nil {
		logger.Warn(ctx, "engine", "dispatch.reply.fail",
			slog.String("platform_id", msg.Identity.ID),
			slog.String("error", err.Error()),
		)
	}
}

func errorReply(locale, fallback string) string {
	for _, loc := range []string{locale, fallback} {
		if loc == "" {
			continue
		}
		if len(loc) > 2 {
			loc = loc[:2]
		}
		if r, ok := errorReplies[loc]; ok {
			return r
		}
	}
	return errorReplies["en"]
}
