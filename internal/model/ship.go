package model

import "fmt"

// Ship is a descriptor of one vessel: a single identity letter and a
// length in cells. IDs run 'A'..'W' (the alphabet reserves 'X' for a
// masked hit of unknown ship identity, see mask/hit below).
type Ship struct {
	ID     byte
	Length uint
}

// MinShipID and MaxShipID bound the legal ship identity alphabet.
const (
	MinShipID = 'A'
	MaxShipID = 'W'
)

// IsValidID reports whether b is a legal ship identity letter.
func IsValidID(b byte) bool {
	return b >= MinShipID && b <= MaxShipID
}

// IsValidLength reports whether n is an allowed ship length.
func IsValidLength(n uint) bool {
	return n >= 2 && n <= 8
}

// NewShip validates and constructs a Ship descriptor.
func NewShip(id byte, length uint) (Ship, error) {
	if !IsValidID(id) {
		return Ship{}, fmt.Errorf("%w: invalid ship id %q", ErrValidation, id)
	}
	if !IsValidLength(length) {
		return Ship{}, fmt.Errorf("%w: invalid ship length %d", ErrValidation, length)
	}
	return Ship{ID: id, Length: length}, nil
}

// String renders the ship as "<ID><len>", e.g. "A5".
func (s Ship) String() string {
	return fmt.Sprintf("%c%d", s.ID, s.Length)
}

// ParseShip parses the "<ID><len>" form produced by String.
func ParseShip(s string) (Ship, error) {
	if len(s) < 2 {
		return Ship{}, fmt.Errorf("%w: malformed ship descriptor %q", ErrValidation, s)
	}
	var length uint
	if _, err := fmt.Sscanf(s[1:], "%d", &length); err != nil {
		return Ship{}, fmt.Errorf("%w: malformed ship length in %q", ErrValidation, s)
	}
	return NewShip(s[0], length)
}

// Descriptor alphabet:
//
//	'.'       unshot empty water
//	'0'       miss
//	'A'..'W'  unhit ship segment (uppercase = identity, unshot)
//	'a'..'w'  hit ship segment (lowercase = identity, hit)
//	'X'       hit of unknown ship (masked)
const (
	unshot      byte = '.'
	missChar    byte = '0'
	maskedHit   byte = 'X'
	lowerOffset byte = 'a' - 'A'
)

// isShip reports whether c denotes a ship segment, hit or not.
func isShip(c byte) bool {
	return IsValidID(c) || isHitLetter(c)
}

func isHitLetter(c byte) bool {
	return c >= MinShipID+lowerOffset && c <= MaxShipID+lowerOffset
}

// isHit reports whether c denotes any resolved hit (known or masked).
func isHit(c byte) bool {
	return isHitLetter(c) || c == maskedHit
}

// isMiss reports whether c is a resolved miss.
func isMiss(c byte) bool {
	return c == missChar
}

// isUnshot reports whether c is untouched water or an unhit ship.
func isUnshot(c byte) bool {
	return c == unshot || IsValidID(c)
}

// mask hides ship identity: uppercase (unhit) becomes '.', lowercase
// (hit) becomes 'X'. Misses and already-masked cells pass through.
func mask(c byte) byte {
	switch {
	case IsValidID(c):
		return unshot
	case isHitLetter(c):
		return maskedHit
	default:
		return c
	}
}

// hit marks a cell as struck: uppercase becomes lowercase. Anything
// else passes through unchanged.
func hit(c byte) byte {
	if IsValidID(c) {
		return c + lowerOffset
	}
	return c
}

// isDescriptorChar reports whether c belongs to the descriptor alphabet.
func isDescriptorChar(c byte) bool {
	return c == unshot || c == missChar || c == maskedHit || IsValidID(c) || isHitLetter(c)
}
