package engine

import (
	"context"
	"testing"
	"time"
)

func TestCallbackTokenShape(t *testing.T) {
	token := newToken()
	if len(token) != 32 {
		t.Fatalf("token length = %d, expected 32", len(token))
	}
	for _, r := range token {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z') {
			t.Fatalf("unexpected token rune %q in %s", r, token)
		}
	}
	if newToken() == token {
		t.Fatal("two tokens collided")
	}
}

func TestCallbackConsumeExactlyOnce(t *testing.T) {
	reg := NewCallbackRegistry(time.Minute)
	sess := NewSession("bot", "u1")

	called := 0
	reg.Register(sess, func(*Context) (bool, error) {
		called++
		return true, nil
	})
	if reg.Len() != 1 {
		t.Fatalf("len = %d", reg.Len())
	}

	fn := reg.Consume(sess)
	if fn == nil {
		t.Fatal("first consume returned nil")
	}
	if _, err := fn(nil); err != nil {
		t.Fatalf("continuation: %v", err)
	}
	if called != 1 {
		t.Fatalf("called = %d", called)
	}

	if fn := reg.Consume(sess); fn != nil {
		t.Fatal("second consume returned a continuation")
	}
	if reg.Len() != 0 {
		t.Fatalf("len = %d after consume", reg.Len())
	}
}

func TestCallbackConsumeSurvivesSessionRehydration(t *testing.T) {
	reg := NewCallbackRegistry(time.Minute)

	var got string
	reg.Register(NewSession("bot", "u1"), func(cc *Context) (bool, error) {
		got = cc.Message.Text
		return true, nil
	})

	// Other identities and other bot instances must not see the token.
	if fn := reg.Consume(NewSession("bot", "u2")); fn != nil {
		t.Fatal("continuation leaked to another identity")
	}
	if fn := reg.Consume(NewSession("otherbot", "u1")); fn != nil {
		t.Fatal("continuation leaked to another bot instance")
	}

	// The bridge builds a fresh Session value on every message; the
	// pending continuation must survive that rehydration.
	fn := reg.Consume(NewSession("bot", "u1"))
	if fn == nil {
		t.Fatal("continuation lost across session instances")
	}
	if _, err := fn(&Context{Message: Message{Text: "5"}}); err != nil {
		t.Fatalf("continuation: %v", err)
	}
	if got != "5" {
		t.Fatalf("continuation saw %q, expected the next message text", got)
	}
	if fn := reg.Consume(NewSession("bot", "u1")); fn != nil {
		t.Fatal("second consume returned a continuation")
	}
}

func TestCallbackRegisterReplacesPrevious(t *testing.T) {
	reg := NewCallbackRegistry(time.Minute)
	sess := NewSession("bot", "u1")

	reg.Register(sess, func(*Context) (bool, error) { return false, nil })
	var ran bool
	reg.Register(sess, func(*Context) (bool, error) {
		ran = true
		return true, nil
	})

	if reg.Len() != 1 {
		t.Fatalf("len = %d, expected replaced entry", reg.Len())
	}
	fn := reg.Consume(sess)
	if fn == nil {
		t.Fatal("consume returned nil")
	}
	fn(nil)
	if !ran {
		t.Fatal("latest continuation did not run")
	}
}

func TestCallbackSweepDropsExpired(t *testing.T) {
	reg := NewCallbackRegistry(time.Minute)
	fresh := NewSession("bot", "fresh")
	stale := NewSession("bot", "stale")

	reg.Register(fresh, func(*Context) (bool, error) { return true, nil })
	token := reg.Register(stale, func(*Context) (bool, error) { return true, nil })

	reg.mu.Lock()
	entry := reg.entries[token]
	entry.expires = time.Now().Add(-time.Second)
	reg.entries[token] = entry
	reg.mu.Unlock()

	if removed := reg.Sweep(context.Background()); removed != 1 {
		t.Fatalf("removed = %d, expected 1", removed)
	}
	if reg.Len() != 1 {
		t.Fatalf("len = %d after sweep", reg.Len())
	}
	// The swept session observes its token as already consumed.
	if fn := reg.Consume(stale); fn != nil {
		t.Fatal("consume returned a swept continuation")
	}
	if fn := reg.Consume(fresh); fn == nil {
		t.Fatal("fresh continuation was lost")
	}
}
