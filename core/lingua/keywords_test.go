package lingua

import "testing"

func TestHasAll(t *testing.T) {
	st := NewSnowball()
	tests := []struct {
		name   string
		locale string
		text   string
		phrase string
		want   bool
	}{
		{"present", "en", "I will come tomorrow", "tomorrow", true},
		{"absent", "en", "I will come today", "tomorrow", false},
		{"multi word", "en", "running quickly home", "quick run", true},
		{"partial multi word", "en", "running home", "quick run", false},
		{"russian case form", "ru", "мы встретимся в пятницу", "пятница", true},
		{"russian absent", "ru", "мы встретимся в пятницу", "суббота", false},
		{"empty phrase", "en", "anything", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := HasAll(st, tc.locale, tc.text, tc.phrase); got != tc.want {
				t.Fatalf("HasAll(%q, %q) = %v, want %v", tc.text, tc.phrase, got, tc.want)
			}
		})
	}
}

func TestHasAny(t *testing.T) {
	st := NewSnowball()
	tests := []struct {
		name   string
		locale string
		text   string
		phrase string
		want   bool
	}{
		{"one of two", "en", "I will come tomorrow", "today tomorrow", true},
		{"none", "en", "see you later", "today tomorrow", false},
		{"empty phrase", "en", "anything", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := HasAny(st, tc.locale, tc.text, tc.phrase); got != tc.want {
				t.Fatalf("HasAny(%q, %q) = %v, want %v", tc.text, tc.phrase, got, tc.want)
			}
		})
	}
}

func TestSnowballFallback(t *testing.T) {
	st := NewSnowball()
	got := st.Stem("xx", "Hello THERE 42")
	want := []string{"hello", "there", "42"}
	if len(got) != len(want) {
		t.Fatalf("stems = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stem %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Привет, мир! foo-bar 12.5")
	want := []string{"привет", "мир", "foo", "bar", "12", "5"}
	if len(got) != len(want) {
		t.Fatalf("tokens = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}
