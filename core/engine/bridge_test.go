package engine

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/m3rciful/convocore/core/storage"
	"github.com/m3rciful/convocore/core/storage/memory"
)

func TestBridgeCreateRequiresIdentity(t *testing.T) {
	b := NewBridge("bot", nil, nil, 0)
	if _, err := b.Create(Identity{}); err != ErrInvalidIdentity {
		t.Fatalf("err = %v, expected ErrInvalidIdentity", err)
	}
	if _, err := b.Find(context.Background(), Identity{}); err != ErrInvalidIdentity {
		t.Fatalf("find err = %v, expected ErrInvalidIdentity", err)
	}
}

func TestBridgeNilRepoIsTransient(t *testing.T) {
	b := NewBridge("bot", nil, nil, 0)
	ctx := context.Background()

	sess, err := b.Find(ctx, Identity{ID: "u1"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !sess.Transient() {
		t.Fatal("expected transient session")
	}
	sess.Payload.Set("step", "menu")
	if err := b.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !sess.Transient() {
		t.Fatal("save without repository must not mark session persisted")
	}
}

func TestBridgePayloadRoundTrip(t *testing.T) {
	repo := memory.NewSessionRepo()
	b := NewBridge("bot", repo, nil, time.Hour)
	ctx := context.Background()

	sess, err := b.Find(ctx, Identity{ID: "u1", Meta: map[string]any{"name": "Ann"}})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	sess.Payload.Set("step", "confirm")
	sess.Payload.Set("amount", float64(42))
	sess.Payload.Set("nested", map[string]any{"k": "v"})
	if err := b.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	if sess.Transient() {
		t.Fatal("session still transient after save")
	}

	again, err := b.Find(ctx, Identity{ID: "u1"})
	if err != nil {
		t.Fatalf("second find: %v", err)
	}
	if again.Transient() {
		t.Fatal("expected persisted session")
	}
	want := map[string]any{
		"step":   "confirm",
		"amount": float64(42),
		"nested": map[string]any{"k": "v"},
	}
	if !reflect.DeepEqual(map[string]any(again.Payload), want) {
		t.Fatalf("payload = %#v, expected %#v", again.Payload, want)
	}
	if again.Info["name"] != "Ann" {
		t.Fatalf("info not preserved: %#v", again.Info)
	}
}

func TestBridgeInfoRefreshOnFind(t *testing.T) {
	repo := memory.NewSessionRepo()
	b := NewBridge("bot", repo, nil, time.Hour)
	ctx := context.Background()

	sess, _ := b.Find(ctx, Identity{ID: "u1", Meta: map[string]any{"name": "Ann", "lang": "en"}})
	if err := b.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	again, _ := b.Find(ctx, Identity{ID: "u1", Meta: map[string]any{"name": "Anna"}})
	if again.Info["name"] != "Anna" {
		t.Fatalf("info name = %v, expected refresh to Anna", again.Info["name"])
	}
	if again.Info["lang"] != "en" {
		t.Fatalf("info lang lost: %#v", again.Info)
	}
}

func TestBridgeResolvesLinkedUser(t *testing.T) {
	sessions := memory.NewSessionRepo()
	users := memory.NewUserRepo()
	id := users.Add(storage.UserRecord{PlatformID: "u1", Name: "Ann", Locale: "en"})

	b := NewBridge("bot", sessions, users, time.Hour)
	ctx := context.Background()

	sess, _ := b.Find(ctx, Identity{ID: "u1"})
	sess.User = &storage.UserRecord{ID: id}
	if err := b.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	again, err := b.Find(ctx, Identity{ID: "u1"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if again.User == nil || again.User.Name != "Ann" {
		t.Fatalf("user = %#v, expected linked Ann", again.User)
	}
}

func TestBridgeDanglingUserIsUnlinked(t *testing.T) {
	sessions := memory.NewSessionRepo()
	users := memory.NewUserRepo()

	b := NewBridge("bot", sessions, users, time.Hour)
	ctx := context.Background()

	sess, _ := b.Find(ctx, Identity{ID: "u1"})
	sess.User = &storage.UserRecord{ID: 999}
	if err := b.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	again, err := b.Find(ctx, Identity{ID: "u1"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if again.User != nil {
		t.Fatalf("user = %#v, expected nil for dangling link", again.User)
	}
}

func TestBridgeExpire(t *testing.T) {
	repo := memory.NewSessionRepo()
	b := NewBridge("bot", repo, nil, time.Nanosecond)
	ctx := context.Background()

	sess, _ := b.Find(ctx, Identity{ID: "u1"})
	if err := b.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	n, err := b.Expire(ctx)
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired = %d, expected 1", n)
	}
	if repo.Len() != 0 {
		t.Fatalf("repo len = %d", repo.Len())
	}
}
