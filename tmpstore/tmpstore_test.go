package tmpstore

import "testing"

func TestGetMissingReturnsNotOK(t *testing.T) {
	s := New()
	data, ok := s.Get(42)
	if ok {
		t.Fatal("expected ok=false for missing id")
	}
	if len(data) != 0 {
		t.Fatalf("expected empty data, got %v", data)
	}
}

func TestSetThenGet(t *testing.T) {
	s := New()
	s.Set(7, []byte("hello"))
	data, ok := s.Get(7)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if string(data) != "hello" {
		t.Fatalf("got %q", data)
	}
}

func TestSetOverwritesSecondWriteWins(t *testing.T) {
	s := New()
	s.Set(1, []byte("first"))
	s.Set(1, []byte("second"))
	data, _ := s.Get(1)
	if string(data) != "second" {
		t.Fatalf("expected second write to win, got %q", data)
	}
}

func TestTakeRemovesEntry(t *testing.T) {
	s := New()
	s.Set(1, []byte("x"))
	data, ok := s.Take(1)
	if !ok || string(data) != "x" {
		t.Fatalf("unexpected take result: %v %v", data, ok)
	}
	if s.Has(1) {
		t.Fatal("expected entry to be removed after Take")
	}
}

func TestTakeMissing(t *testing.T) {
	s := New()
	if _, ok := s.Take(99); ok {
		t.Fatal("expected ok=false for missing id")
	}
}
