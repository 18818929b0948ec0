package channel

import (
	"errors"
	"fmt"
	"strings"
)

// Direction is one of the fixed physical orientations of the lantern.
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionNorth Direction = "north"
	DirectionEast  Direction = "east"
	DirectionSouth Direction = "south"
	DirectionWest  Direction = "west"
)

// AllDirections is the fixed enumeration, in reconciliation order.
var AllDirections = []Direction{
	DirectionUp,
	DirectionDown,
	DirectionNorth,
	DirectionEast,
	DirectionSouth,
	DirectionWest,
}

// ErrUnknownDirection is returned when parsing a value outside AllDirections.
var ErrUnknownDirection = errors.New("unknown direction")

// ParseDirection parses s case-insensitively.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if d.Valid() {
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// Valid reports whether d is part of AllDirections.
func (d Direction) Valid() bool {
	for _, known := range AllDirections {
		if d == known {
			return true
		}
	}
	return false
}

func (d Direction) String() string {
	return string(d)
}
