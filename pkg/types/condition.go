package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrParse marks data scraped from the marketplace that could not be
// interpreted. It usually means the upstream markup changed.
var ErrParse = errors.New("parse error")

// ParseError describes a single value that failed to parse.
type ParseError struct {
	Field string
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: unknown %s %q", e.Field, e.Value)
}

// Unwrap lets errors.Is match ErrParse.
func (*ParseError) Unwrap() error {
	return ErrParse
}

// Condition is the physical grade of a record's media or sleeve. Values are
// totally ordered: the special sleeve grades sort below Poor.
type Condition int

// Condition constants, in ascending order.
const (
	NotGraded    Condition = -3
	NoCover      Condition = -2
	Generic      Condition = -1
	Poor         Condition = 0
	Fair         Condition = 1
	Good         Condition = 2
	GoodPlus     Condition = 3
	VeryGood     Condition = 4
	VeryGoodPlus Condition = 5
	NearMint     Condition = 6
	Mint         Condition = 7
)

type conditionInfo struct {
	name  string
	label string
	short string
}

var conditionTable = map[Condition]conditionInfo{
	NotGraded:    {name: "NOT_GRADED", label: "Not Graded", short: "NG"},
	NoCover:      {name: "NO_COVER", label: "No Cover", short: "NC"},
	Generic:      {name: "GENERIC", label: "Generic", short: "GEN"},
	Poor:         {name: "POOR", label: "Poor (P)", short: "P"},
	Fair:         {name: "FAIR", label: "Fair (F)", short: "F"},
	Good:         {name: "GOOD", label: "Good (G)", short: "G"},
	GoodPlus:     {name: "GOOD_PLUS", label: "Good Plus (G+)", short: "G+"},
	VeryGood:     {name: "VERY_GOOD", label: "Very Good (VG)", short: "VG"},
	VeryGoodPlus: {name: "VERY_GOOD_PLUS", label: "Very Good Plus (VG+)", short: "VG+"},
	NearMint:     {name: "NEAR_MINT", label: "Near Mint (NM or M-)", short: "NM"},
	Mint:         {name: "MINT", label: "Mint (M)", short: "M"},
}

// labelToCondition is the exact marketplace label lookup.
var labelToCondition = func() map[string]Condition {
	m := make(map[string]Condition, len(conditionTable))
	for c, info := range conditionTable {
		m[info.label] = c
	}
	return m
}()

// nameToCondition accepts enum names and short grades, case-insensitively.
var nameToCondition = func() map[string]Condition {
	m := make(map[string]Condition, 2*len(conditionTable))
	for c, info := range conditionTable {
		m[info.name] = c
		m[strings.ToUpper(info.short)] = c
	}
	return m
}()

// Conditions returns every condition in ascending order.
func Conditions() []Condition {
	out := make([]Condition, 0, len(conditionTable))
	for c := NotGraded; c <= Mint; c++ {
		out = append(out, c)
	}
	return out
}

// ParseCondition maps a marketplace condition label such as
// "Very Good Plus (VG+)" to its Condition. The lookup is exact.
func ParseCondition(label string) (Condition, error) {
	if c, ok := labelToCondition[label]; ok {
		return c, nil
	}
	return NotGraded, &ParseError{Field: "condition label", Value: label}
}

// ConditionFromName resolves a user-supplied condition name. Both enum names
// ("VERY_GOOD_PLUS") and short grades ("VG+") are accepted.
func ConditionFromName(name string) (Condition, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, " ", "_")
	if c, ok := nameToCondition[key]; ok {
		return c, nil
	}
	// "M-" is a common alias for near mint.
	if key == "M_" {
		return NearMint, nil
	}
	return NotGraded, &ParseError{Field: "condition name", Value: name}
}

// Valid reports whether c is one of the defined grades.
func (c Condition) Valid() bool {
	_, ok := conditionTable[c]
	return ok
}

// String returns the enum name, e.g. "VERY_GOOD_PLUS".
func (c Condition) String() string {
	if info, ok := conditionTable[c]; ok {
		return info.name
	}
	return fmt.Sprintf("Condition(%d)", int(c))
}

// Label returns the marketplace label, e.g. "Very Good Plus (VG+)".
func (c Condition) Label() string {
	return conditionTable[c].label
}

// Short returns the abbreviated grade, e.g. "VG+".
func (c Condition) Short() string {
	return conditionTable[c].short
}

// MarshalText encodes the condition by name.
func (c Condition) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid condition %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a condition name or short grade.
func (c *Condition) UnmarshalText(text []byte) error {
	parsed, err := ConditionFromName(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
