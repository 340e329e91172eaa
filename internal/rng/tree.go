package rng

import (
	crand "crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
)

// Tree is a node in the hierarchical seed tree. Every stochastic component
// of a drive system owns one node; child nodes are derived from the parent
// key with a SHA-256 spread so sibling streams stay statistically
// independent even for adjacent root seeds.
type Tree struct {
	key      [32]byte
	entropy  uint64
	spawnKey uint64
}

// NewTree builds a root node. If seed is nil the root key is drawn from OS
// entropy, which still yields a reproducible run once the returned entropy
// is replayed via NewTree(&entropy).
func NewTree(seed *uint64) *Tree {
	var buf [8]byte
	if seed == nil {
		if _, err := crand.Read(buf[:]); err != nil {
			panic("rng: reading OS entropy: " + err.Error())
		}
	} else {
		binary.LittleEndian.PutUint64(buf[:], *seed)
	}
	return &Tree{
		key:     sha256.Sum256(buf[:]),
		entropy: binary.LittleEndian.Uint64(buf[:]),
	}
}

// Entropy returns the node's entropy condensed to one integer. For a root
// node this is the value to pass back into NewTree to replay a run.
func (t *Tree) Entropy() uint64 {
	return t.entropy
}

// Spawn derives n independent child nodes. Each call continues the spawn
// counter, so successive Spawn calls never hand out the same child twice.
func (t *Tree) Spawn(n int) []*Tree {
	children := make([]*Tree, n)
	for i := range children {
		children[i] = t.child(t.spawnKey)
		t.spawnKey++
	}
	return children
}

func (t *Tree) child(index uint64) *Tree {
	var buf [40]byte
	copy(buf[:32], t.key[:])
	binary.LittleEndian.PutUint64(buf[32:], index)
	key := sha256.Sum256(buf[:])
	return &Tree{
		key:     key,
		entropy: binary.LittleEndian.Uint64(key[:8]),
	}
}

// Rand returns a fresh ChaCha8 generator keyed by this node.
func (t *Tree) Rand() *rand.Rand {
	return rand.New(rand.NewChaCha8(t.key))
}
