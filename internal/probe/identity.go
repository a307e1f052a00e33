package probe

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"sync"
)

// identity generates collision-free-within-a-run opaque tokens from a
// per-process random seed and a monotonic counter. The tokens need not be cryptographically unpredictable, only
// unique within a run.
type identity struct {
	mu       sync.Mutex
	seed     [32]byte
	sequence int64
}

func newIdentity(seed [32]byte) *identity {
	return &identity{seed: seed}
}

// next returns the next unique token, base64-encoded.
func (g *identity) next() string {
	g.mu.Lock()
	n := g.sequence
	g.sequence++
	g.mu.Unlock()

	h := sha256.New()
	h.Write(g.seed[:])
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	h.Write(buf[:])

	digest := h.Sum(nil)
	// base64 encodes 3 bytes into 4 characters; truncate to a multiple
	// of 3 so there's no padding to strip.
	return base64.RawURLEncoding.EncodeToString(digest[:18])
}
