package cache

import (
	"testing"
	"time"
)

func TestPutGet(t *testing.T) {
	c := New(time.Minute)
	key := Key("org1", nil, 10, 0)

	if got := c.Get(key); got != nil {
		t.Fatalf("expected miss before Put, got %v", got)
	}

	c.Put(key, "org1", []string{"a", "b"})

	got, ok := c.Get(key).([]string)
	if !ok || len(got) != 2 {
		t.Fatalf("expected cached slice, got %v", got)
	}
}

func TestKeyStability(t *testing.T) {
	a := Key("org", []string{"x", "y"}, 10, 0)
	b := Key("org", []string{"y", "x"}, 10, 0)
	if a != b {
		t.Error("filter order should not change the key")
	}

	c := Key("org", []string{"x"}, 10, 0)
	if a == c {
		t.Error("different filters must produce different keys")
	}

	d := Key("other", []string{"x", "y"}, 10, 0)
	if a == d {
		t.Error("different orgs must produce different keys")
	}
}

func TestExpiry(t *testing.T) {
	c := New(time.Nanosecond)
	key := Key("org", nil, 5, 0)
	c.Put(key, "org", "value")

	time.Sleep(time.Millisecond)

	if got := c.Get(key); got != nil {
		t.Errorf("expected expired entry to miss, got %v", got)
	}
}

func TestInvalidateOrg(t *testing.T) {
	c := New(time.Minute)
	k1 := Key("org1", nil, 10, 0)
	k2 := Key("org2", nil, 10, 0)
	c.Put(k1, "org1", "one")
	c.Put(k2, "org2", "two")

	c.InvalidateOrg("org1")

	if got := c.Get(k1); got != nil {
		t.Error("org1 entry should have been invalidated")
	}
	if got := c.Get(k2); got == nil {
		t.Error("org2 entry should survive org1 invalidation")
	}
}
