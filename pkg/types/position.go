package types

// Position is where a dragged node lands relative to its drop target.
type Position string

const (
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
	PositionInside Position = "inside"
)

// Valid reports whether p is one of the three drop positions.
func (p Position) Valid() bool {
	switch p {
	case PositionBefore, PositionAfter, PositionInside:
		return true
	}
	return false
}
