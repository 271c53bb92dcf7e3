package service_test

import (
	"testing"

	"github.com/google/uuid"

	"vireo.social/vireo/internal/service"
)

func TestDeriveChannelIDSymmetric(t *testing.T) {
	for i := 0; i < 50; i++ {
		a := uuid.New()
		b := uuid.New()

		ab := service.DeriveChannelID(a, b)
		ba := service.DeriveChannelID(b, a)
		if ab != ba {
			t.Fatalf("DeriveChannelID not symmetric: %s vs %s for %s/%s", ab, ba, a, b)
		}
	}
}

func TestDeriveChannelIDKnownValue(t *testing.T) {
	a := mustUUID(t, "0000000a-0000-0000-0000-000000000000")
	b := mustUUID(t, "00000014-0000-0000-0000-000000000000")

	// 0xa + 0x14 = 30
	if got := service.DeriveChannelID(a, b); got != "30" {
		t.Fatalf("expected channel id 30, got %s", got)
	}
}

func TestDeriveChannelIDCollision(t *testing.T) {
	// Distinct pairs with equal segment sums share a channel; the legacy
	// derivation does not resist collisions.
	a := mustUUID(t, "00000001-0000-0000-0000-000000000000")
	b := mustUUID(t, "00000003-0000-0000-0000-000000000000")
	c := mustUUID(t, "00000002-0000-0000-0000-000000000000")
	d := mustUUID(t, "00000002-0000-0000-0000-000000000001")

	if service.DeriveChannelID(a, b) != service.DeriveChannelID(c, d) {
		t.Fatalf("expected legacy derivation to collide on equal sums")
	}

	if service.DeriveChannelIDHashed(a, b) == service.DeriveChannelIDHashed(c, d) {
		t.Fatalf("hashed derivation must separate distinct pairs")
	}
}

func TestDeriveChannelIDHashedSeparatesTimeOrderedIDs(t *testing.T) {
	// v7 IDs minted in the same timestamp window share the leading hex
	// segment, which degenerates the legacy sum into one shared channel for
	// every pair. The hashed derivation must keep each pair distinct.
	newV7 := func() uuid.UUID {
		id, err := uuid.NewV7()
		if err != nil {
			t.Fatalf("NewV7: %v", err)
		}
		return id
	}
	a, b, c := newV7(), newV7(), newV7()

	channels := map[string]string{
		"a-b": service.DeriveChannelIDHashed(a, b),
		"a-c": service.DeriveChannelIDHashed(a, c),
		"b-c": service.DeriveChannelIDHashed(b, c),
	}
	seen := make(map[string]string)
	for pair, channel := range channels {
		if prev, ok := seen[channel]; ok {
			t.Fatalf("pairs %s and %s share channel %s", prev, pair, channel)
		}
		seen[channel] = pair
	}
}

func TestDeriveChannelIDHashedSymmetric(t *testing.T) {
	for i := 0; i < 50; i++ {
		a := uuid.New()
		b := uuid.New()
		if service.DeriveChannelIDHashed(a, b) != service.DeriveChannelIDHashed(b, a) {
			t.Fatalf("DeriveChannelIDHashed not symmetric for %s/%s", a, b)
		}
	}
}
