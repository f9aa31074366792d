package common

import (
	"regexp"
	"sync"
)

var compiled sync.Map // pattern -> *regexp.Regexp

// MatchRegex compiles and matches a regex pattern against a string.
// Compiled patterns are cached, so repeated validation of the same pattern is cheap.
// Returns an error if the pattern is invalid.
func MatchRegex(pattern, text string) (bool, error) {
	if re, ok := compiled.Load(pattern); ok {
		return re.(*regexp.Regexp).MatchString(text), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}
	compiled.Store(pattern, re)
	return re.MatchString(text), nil
}
