package uuid

import (
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	t.Run("valid_and_unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 1000; i++ {
			id := New()
			if _, ok := Time(id); !ok {
				t.Fatalf("generated invalid id %q", id)
			}
			if seen[id] {
				t.Fatalf("duplicate id %q", id)
			}
			seen[id] = true
		}
	})

	t.Run("time_ordered", func(t *testing.T) {
		prev := New()
		for i := 0; i < 100; i++ {
			next := New()
			if next <= prev {
				t.Fatalf("expected %q > %q", next, prev)
			}
			prev = next
		}
	})
}

func TestTime(t *testing.T) {
	before := time.Now().Add(-time.Second)
	ts, ok := Time(New())
	if !ok {
		t.Fatal("expected a UUIDv7 timestamp")
	}
	if ts.Before(before) || ts.After(time.Now().Add(time.Second)) {
		t.Errorf("timestamp %s out of range", ts)
	}

	if _, ok := Time("1"); ok {
		t.Error("seed id should not carry a timestamp")
	}
}
