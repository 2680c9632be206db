package common

import (
	"fmt"
	"regexp"
)

// NewRegexp compiles plain. An empty plain results in the zero Regexp.
func NewRegexp(plain string) (result Regexp, err error) {
	err = result.Set(plain)
	return result, err
}

// MustNewRegexp is like NewRegexp but panics on an illegal expression. It
// is meant for defaults.
func MustNewRegexp(plain string) Regexp {
	result, err := NewRegexp(plain)
	if err != nil {
		panic(err)
	}
	return result
}

// Regexp is a regular expression which can be used as flag value and in the
// configuration file, where it is stored as its source text.
type Regexp struct {
	v *regexp.Regexp
}

func (this *Regexp) Set(plain string) error {
	if plain == "" {
		*this = Regexp{nil}
		return nil
	}

	buf, err := regexp.Compile(plain)
	if err != nil {
		return fmt.Errorf("illegal-regexp: %s: %w", plain, err)
	}

	*this = Regexp{buf}
	return nil
}

func (this Regexp) String() string {
	if v := this.v; v != nil {
		return v.String()
	}
	return ""
}

// MatchString reports whether s contains a match. The zero Regexp only
// matches the empty string.
func (this Regexp) MatchString(s string) bool {
	if v := this.v; v != nil {
		return v.MatchString(s)
	}
	return s == ""
}

func (this Regexp) MarshalText() (text []byte, err error) {
	return []byte(this.String()), nil
}

func (this *Regexp) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

func (this Regexp) IsZero() bool {
	return this.v == nil
}
