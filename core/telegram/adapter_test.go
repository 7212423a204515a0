package telegram

import (
	"context"
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/convocore/core/engine"
	"github.com/m3rciful/convocore/core/logger"
)

func TestRecipientForPrefersChatMeta(t *testing.T) {
	identity := engine.Identity{
		ID:   "42",
		Meta: map[string]any{"chat_id": int64(-100500)},
	}
	rec, err := recipientFor(context.Background(), identity)
	if err != nil {
		t.Fatalf("recipientFor: %v", err)
	}
	if rec.(tele.ChatID) != tele.ChatID(-100500) {
		t.Fatalf("recipient = %v", rec)
	}
}

func TestRecipientForFallsBackToContext(t *testing.T) {
	ctx := logger.WithMessageMeta(context.Background(), 1, "42", 777)
	rec, err := recipientFor(ctx, engine.Identity{ID: "42"})
	if err != nil {
		t.Fatalf("recipientFor: %v", err)
	}
	if rec.(tele.ChatID) != tele.ChatID(777) {
		t.Fatalf("recipient = %v", rec)
	}
}

func TestRecipientForParsesIdentity(t *testing.T) {
	rec, err := recipientFor(context.Background(), engine.Identity{ID: "42"})
	if err != nil {
		t.Fatalf("recipientFor: %v", err)
	}
	if rec.(tele.ChatID) != tele.ChatID(42) {
		t.Fatalf("recipient = %v", rec)
	}

	if _, err := recipientFor(context.Background(), engine.Identity{ID: "not-a-number"}); err == nil {
		t.Fatal("expected error for unresolvable identity")
	}
}

func TestLocalizedFallback(t *testing.T) {
	cases := []struct {
		locale, def string
		expected    string
	}{
		{"ru", "en", fallbackReplies["ru"]},
		{"ru-RU", "en", fallbackReplies["ru"]},
		{"de", "ru", fallbackReplies["ru"]},
		{"", "ru", fallbackReplies["ru"]},
		{"", "", fallbackReplies["en"]},
		{"xx", "yy", fallbackReplies["en"]},
	}
	for _, tc := range cases {
		if got := localizedFallback(tc.locale, tc.def); got != tc.expected {
			t.Fatalf("localizedFallback(%q, %q) = %q, expected %q", tc.locale, tc.def, got, tc.expected)
		}
	}
}
