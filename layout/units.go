package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe lengths. The layout engine works in PDF points;
// lengths written in config files or scripts keep their unit until converted.

// Unit represents the original unit of a length value.
type Unit int

const (
	UnitNone Unit = iota // bare numbers, interpreted as points
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between pt and mm (72pt = 25.4mm).
const (
	MmToPt = 72.0 / 25.4
	PtToMm = 25.4 / 72.0
)

// MM converts millimeters to points.
func MM(mm float64) float64 { return mm * MmToPt }

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value" yaml:"value"`
	Unit  Unit    `json:"unit" yaml:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToPT converts this length to points. Unit-less values are already points.
func (l Length) ToPT() float64 {
	switch l.Unit {
	case UnitMM:
		return l.Value * MmToPt
	case UnitCM:
		return l.Value * 10 * MmToPt
	case UnitIN:
		return l.Value * 72
	default:
		return l.Value
	}
}

// ToMM converts this length to millimeters.
func (l Length) ToMM() float64 { return l.ToPT() * PtToMm }

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + UnitToString(l.Unit)
}

// ParseRawLengthStr parses a length string such as "4mm", "12pt" or "0.5in"
// preserving its unit. ok is false when the numeric part is not a number.
func ParseRawLengthStr(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// ParsePoints is ParseRawLengthStr followed by ToPT.
func ParsePoints(value string) (float64, bool) {
	l, ok := ParseRawLengthStr(value)
	if !ok {
		return 0, false
	}
	return l.ToPT(), true
}
