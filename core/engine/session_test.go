package engine

import "testing"

func TestPayloadGetters(t *testing.T) {
	p := Payload{}
	p.Set("step", "menu")
	p.Set("count", int64(3))
	p.Set("ratio", 2.0)
	p.Set("flag", true)

	if v, ok := p.GetString("step"); !ok || v != "menu" {
		t.Fatalf("GetString = %q, %v", v, ok)
	}
	if v, ok := p.GetInt64("count"); !ok || v != 3 {
		t.Fatalf("GetInt64 = %d, %v", v, ok)
	}
	// Numbers that went through a JSON round trip arrive as float64.
	if v, ok := p.GetInt64("ratio"); !ok || v != 2 {
		t.Fatalf("GetInt64(float) = %d, %v", v, ok)
	}
	if v, ok := p.GetBool("flag"); !ok || !v {
		t.Fatalf("GetBool = %v, %v", v, ok)
	}
	if _, ok := p.GetString("count"); ok {
		t.Fatal("GetString on int should fail")
	}
	if _, ok := p.Get("missing"); ok {
		t.Fatal("Get on missing key should fail")
	}

	p.Delete("step")
	if _, ok := p.Get("step"); ok {
		t.Fatal("Delete did not remove key")
	}
}

func TestNewSessionIsTransient(t *testing.T) {
	s := NewSession("bot", "u1")
	if !s.Transient() {
		t.Fatal("fresh session should be transient")
	}
	if s.Payload == nil || s.Info == nil {
		t.Fatal("maps must be initialized")
	}
}
