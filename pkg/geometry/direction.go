package geometry

import "math"

// Direction is the heading of one axis-aligned segment.
type Direction int

const (
	DirNone Direction = iota // zero-length segment
	DirLeft
	DirUp
	DirRight
	DirDown
)

func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirUp:
		return "up"
	case DirRight:
		return "right"
	case DirDown:
		return "down"
	default:
		return "none"
	}
}

// DirectionOf returns the heading from (x1, y1) to (x2, y2).
// For non axis-aligned input the dominant component wins.
func DirectionOf(x1, y1, x2, y2 float64) Direction {
	dx, dy := x2-x1, y2-y1
	switch {
	case dx == 0 && dy == 0:
		return DirNone
	case math.Abs(dx) >= math.Abs(dy):
		if dx < 0 {
			return DirLeft
		}
		return DirRight
	default:
		if dy < 0 {
			return DirUp
		}
		return DirDown
	}
}

// Dir3 is the direction signature of a [Connector]: one heading per segment.
type Dir3 struct {
	First, Second, Third Direction
}

// badDoglegs are the right-handed U-turns. Two connectors that both turn this
// way and cross each other are hard to tell apart on screen.
var badDoglegs = [4]Dir3{
	{DirLeft, DirUp, DirRight},
	{DirUp, DirRight, DirDown},
	{DirRight, DirDown, DirLeft},
	{DirDown, DirLeft, DirUp},
}

// IsBadDogleg reports whether d is one of the four right-handed U-turn patterns.
func (d Dir3) IsBadDogleg() bool {
	for _, p := range badDoglegs {
		if d == p {
			return true
		}
	}
	return false
}

func (d Dir3) String() string {
	return d.First.String() + "-" + d.Second.String() + "-" + d.Third.String()
}
