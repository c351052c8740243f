package radius

import (
	"fmt"
	"strings"
)

// ParseAttribute parses "Name<op>Value", e.g. "Session-Timeout:=3600" or
// "Framed-IP-Address=10.0.0.1". The operator is the first '=' of s together
// with the character before or after it that forms a longer operator.
func ParseAttribute(s string) (Attribute, error) {
	idx := strings.IndexByte(s, '=')
	if idx < 1 {
		return Attribute{}, fmt.Errorf("attribute %q is not Name<op>Value", s)
	}

	name, op, value := s[:idx], OpAssign, s[idx+1:]

	switch {
	case strings.ContainsRune(":+-^", rune(s[idx-1])):
		name, op = s[:idx-1], Operator(s[idx-1:idx+1])
	case strings.HasPrefix(value, "="):
		op, value = OpEqual, value[1:]
	}

	a := Attribute{Name: strings.TrimSpace(name), Operator: op, Value: strings.TrimSpace(value)}
	if err := ValidateAttribute(a); err != nil {
		return Attribute{}, err
	}

	return a, nil
}
