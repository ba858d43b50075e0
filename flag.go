package hub

import "strings"

// Flag is a set of readiness conditions for a descriptor. The bits
// combine freely.
type Flag uint8

const (
	READ  Flag = 1 << iota // Descriptor is readable
	WRITE                  // Descriptor is writable
	ERR                    // Hang-up or error condition
)

// ReprFlag renders the set bits of flag in the fixed order READ,
// WRITE, ERR as "R", "W" and "!". Unknown bits are ignored, so
// READ|ERR renders as "R!".
func ReprFlag(flag Flag) string {
	var sb strings.Builder
	if flag&READ != 0 {
		sb.WriteByte('R')
	}
	if flag&WRITE != 0 {
		sb.WriteByte('W')
	}
	if flag&ERR != 0 {
		sb.WriteByte('!')
	}
	return sb.String()
}

func (f Flag) String() string {
	return ReprFlag(f)
}
