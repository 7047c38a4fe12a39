package roles

import "sync/atomic"

// Provider hands out the current Calculator and lets a config reload swap it
// without locking readers.
type Provider struct {
	cur atomic.Pointer[Calculator]
}

func NewProvider(c *Calculator) *Provider {
	p := &Provider{}
	p.cur.Store(c)
	return p
}

// Calculator returns the calculator in effect right now.
func (p *Provider) Calculator() *Calculator { return p.cur.Load() }

// Swap installs c and returns the previous calculator.
func (p *Provider) Swap(c *Calculator) *Calculator { return p.cur.Swap(c) }
