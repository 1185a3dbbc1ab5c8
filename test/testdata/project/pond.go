// Package pond models small garden ponds.
package pond

import "errors"

// DefaultDepth is the depth in meters used when none is given.
const DefaultDepth = 2

// ErrDry reports an operation on a pond without water.
var ErrDry = errors.New("pond: dry")

// Pond is a body of water holding fish.
type Pond struct {
	Depth int
	fish  []Fish
}

// NewPond returns a pond of the given depth.
func NewPond(depth int) *Pond {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Pond{Depth: depth}
}

// Fill raises the water level to the pond's depth.
func (p *Pond) Fill() {}

// Drain empties the pond.
func (p *Pond) Drain() error {
	if p.Depth == 0 {
		return ErrDry
	}
	return nil
}

// Fish is a pond inhabitant.
type Fish struct {
	Name string
}

// Stock adds fish to the pond.
func Stock(p *Pond, fish ...Fish) error {
	if p == nil {
		return ErrDry
	}
	p.fish = append(p.fish, fish...)
	return nil
}
