package service

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DeriveChannelID maps an unordered pair of user IDs to a channel key by
// summing the leading hex segment of each UUID, rendered in decimal. Addition
// commutes, so DeriveChannelID(a, b) == DeriveChannelID(b, a). It assumes
// uniformly random IDs: with time-ordered v7 keys every user created in the
// same timestamp window shares the leading segment and all their pairs
// collide, so chat uses DeriveChannelIDHashed instead. Kept only for decoding
// channel keys minted under the old scheme.
func DeriveChannelID(a, b uuid.UUID) string {
	return strconv.FormatUint(channelSeed(a)+channelSeed(b), 10)
}

func channelSeed(id uuid.UUID) uint64 {
	segment, _, _ := strings.Cut(id.String(), "-")
	seed, err := strconv.ParseUint(segment, 16, 64)
	if err != nil {
		return 0
	}
	return seed
}

// DeriveChannelIDHashed is the channel derivation used for chat: it hashes
// the two IDs in canonical order, keeping the symmetry guarantee while making
// cross-pair collisions computationally infeasible regardless of how the IDs
// are generated.
func DeriveChannelIDHashed(a, b uuid.UUID) string {
	lo, hi := a.String(), b.String()
	if lo > hi {
		lo, hi = hi, lo
	}
	sum := sha256.Sum256([]byte(lo + ":" + hi))
	return hex.EncodeToString(sum[:])
}
