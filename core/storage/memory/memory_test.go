package memory

import (
	"context"
	"testing"
	"time"

	"github.com/m3rciful/convocore/core/storage"
)

func TestSessionRepoSaveIsolatesPayload(t *testing.T) {
	repo := NewSessionRepo()
	ctx := context.Background()

	rec := &storage.SessionRecord{
		Bot:        "bot",
		PlatformID: "u1",
		Payload:    map[string]any{"step": "menu"},
		Info:       map[string]any{},
	}
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if rec.ID == 0 {
		t.Fatal("save must assign an id")
	}

	// Mutating the caller's map after save must not leak into the store.
	rec.Payload["step"] = "changed"

	got, err := repo.FindByPlatformID(ctx, "bot", "u1")
	if err != nil || len(got) != 1 {
		t.Fatalf("find = %v, %v", got, err)
	}
	if got[0].Payload["step"] != "menu" {
		t.Fatalf("stored payload = %#v", got[0].Payload)
	}
}

func TestSessionRepoUpsertKeepsIdentity(t *testing.T) {
	repo := NewSessionRepo()
	ctx := context.Background()

	rec := &storage.SessionRecord{Bot: "bot", PlatformID: "u1", Payload: map[string]any{}}
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	firstID, firstCreated := rec.ID, rec.CreatedAt

	rec.Payload = map[string]any{"step": "next"}
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if rec.ID != firstID {
		t.Fatalf("id changed: %d -> %d", firstID, rec.ID)
	}
	if !rec.CreatedAt.Equal(firstCreated) {
		t.Fatalf("created_at changed: %v -> %v", firstCreated, rec.CreatedAt)
	}
	if repo.Len() != 1 {
		t.Fatalf("len = %d", repo.Len())
	}
}

func TestSessionRepoDeleteExpired(t *testing.T) {
	repo := NewSessionRepo()
	ctx := context.Background()

	old := &storage.SessionRecord{Bot: "bot", PlatformID: "old"}
	if err := repo.Save(ctx, old); err != nil {
		t.Fatalf("save: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	fresh := &storage.SessionRecord{Bot: "bot", PlatformID: "fresh"}
	if err := repo.Save(ctx, fresh); err != nil {
		t.Fatalf("save: %v", err)
	}

	n, err := repo.DeleteExpired(ctx, "bot", 3*time.Millisecond)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Fatalf("removed = %d, expected 1", n)
	}
	if got, _ := repo.FindByPlatformID(ctx, "bot", "fresh"); len(got) != 1 {
		t.Fatal("fresh session was removed")
	}
}

func TestUserRepoFind(t *testing.T) {
	repo := NewUserRepo()
	id := repo.Add(storage.UserRecord{PlatformID: "u1", Name: "Ann", Locale: "en"})

	got, err := repo.Find(context.Background(), id)
	if err != nil || len(got) != 1 {
		t.Fatalf("find = %v, %v", got, err)
	}
	if got[0].Name != "Ann" {
		t.Fatalf("user = %#v", got[0])
	}

	if got, _ := repo.Find(context.Background(), 999); len(got) != 0 {
		t.Fatal("unknown id should yield no records")
	}
}
