package actor

import (
	"fmt"
	"math"
)

// Position is a flat 2D grid coordinate. It only feeds the distance
// heuristic and approach semantics; there is no collision model.
type Position struct {
	X int `json:"x" yaml:"x" toml:"x"`
	Y int `json:"y" yaml:"y" toml:"y"`
}

// DistanceTo returns the Euclidean distance between two positions.
func (p Position) DistanceTo(o Position) float64 {
	return math.Hypot(float64(p.X-o.X), float64(p.Y-o.Y))
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}
