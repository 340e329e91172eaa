package rng

import "math/rand/v2"

// Seedable is implemented by every component that consumes randomness.
// Seeding replaces the component's whole stream hierarchy.
type Seedable interface {
	Seed(tree *Tree)
}

// Component is the embeddable random stream of one stochastic component.
// The zero value is usable: it lazily seeds itself from OS entropy on first
// use. Each episode draws its generator from the next child of the
// component's tree node, so re-seeding reproduces whole runs episode by
// episode.
type Component struct {
	tree *Tree
	r    *rand.Rand
}

// Seed replaces the component's seed tree. The current generator is
// invalidated; the next NextGenerator call derives episode streams from the
// new tree.
func (c *Component) Seed(tree *Tree) {
	c.tree = tree
	c.r = nil
}

// NextGenerator turns over the episode generator. Called on every reset so
// that episodes are independent but reproducible in sequence.
func (c *Component) NextGenerator() {
	if c.tree == nil {
		c.tree = NewTree(nil)
	}
	c.r = c.tree.Spawn(1)[0].Rand()
}

// Rand returns the current episode generator.
func (c *Component) Rand() *rand.Rand {
	if c.r == nil {
		c.NextGenerator()
	}
	return c.r
}
