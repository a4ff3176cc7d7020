package config

import "strings"

// truthy lists the spellings accepted as true for boolean deployment keys.
var truthy = map[string]struct{}{
	"yes":  {},
	"true": {},
	"t":    {},
	"1":    {},
}

// Str2Bool reports whether value spells a true boolean.
// Matching is case-insensitive but exact: surrounding whitespace makes it false.
func Str2Bool(value string) bool {
	_, ok := truthy[strings.ToLower(value)]
	return ok
}
