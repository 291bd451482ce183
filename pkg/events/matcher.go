package events

import "regexp"

// Matcher selects event names. The zero value matches nothing.
type Matcher struct {
	name    string
	pattern *regexp.Regexp
}

// Exact matches a single event name.
func Exact(name string) Matcher {
	return Matcher{name: name}
}

// Pattern matches every event name re matches.
func Pattern(re *regexp.Regexp) Matcher {
	return Matcher{pattern: re}
}

// MustPattern compiles expr and returns a pattern matcher.
// It panics if expr is not a valid regular expression.
func MustPattern(expr string) Matcher {
	return Pattern(regexp.MustCompile(expr))
}

// Match reports whether name is selected.
func (m Matcher) Match(name string) bool {
	if m.pattern != nil {
		return m.pattern.MatchString(name)
	}
	return m.name != "" && m.name == name
}

// Equal reports whether two matchers select by the same rule.
// Patterns compare by their source expression.
func (m Matcher) Equal(other Matcher) bool {
	if (m.pattern == nil) != (other.pattern == nil) {
		return false
	}
	if m.pattern != nil {
		return m.pattern.String() == other.pattern.String()
	}
	return m.name == other.name
}

func (m Matcher) String() string {
	if m.pattern != nil {
		return "/" + m.pattern.String() + "/"
	}
	return m.name
}
