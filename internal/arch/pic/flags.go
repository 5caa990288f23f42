package pic

import "strings"

// Flag is a set of STATUS register condition flags. The bit values match
// the STATUS register bit positions.
type Flag uint8

// Status flags.
const (
	FlagC  Flag = 1 << 0 // carry
	FlagDC Flag = 1 << 1 // digit carry
	FlagZ  Flag = 1 << 2 // zero
	FlagOV Flag = 1 << 3 // overflow
	FlagN  Flag = 1 << 4 // negative
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{FlagC, "C"},
	{FlagDC, "DC"},
	{FlagZ, "Z"},
	{FlagOV, "OV"},
	{FlagN, "N"},
}

// Name returns the identifier name of the flag group, for example CDCZOVN.
func (f Flag) Name() string {
	var sb strings.Builder
	for _, n := range flagNames {
		if f&n.flag != 0 {
			sb.WriteString(n.name)
		}
	}
	return sb.String()
}

func (f Flag) String() string {
	return f.Name()
}

// Commonly used flag groups.
const (
	FlagsArith = FlagC | FlagDC | FlagZ | FlagOV | FlagN
	FlagsZN    = FlagZ | FlagN
	FlagsCZN   = FlagC | FlagZ | FlagN
	FlagsPIC16 = FlagC | FlagDC | FlagZ
)
