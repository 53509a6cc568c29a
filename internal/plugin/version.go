package plugin

import (
	"fmt"
	"strconv"
	"strings"
)

// parseVersion parses a dotted triple like "1.2.0" into its numeric
// segments. Exactly three dot-separated non-negative integers are
// accepted; anything else is ErrMalformedVersion.
func parseVersion(s string) ([3]int, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return [3]int{}, fmt.Errorf("%w: %q", ErrMalformedVersion, s)
	}
	var v [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return [3]int{}, fmt.Errorf("%w: %q", ErrMalformedVersion, s)
		}
		v[i] = n
	}
	return v, nil
}

// CompatibleVersion reports whether current satisfies the minimum
// required version, comparing the three segments left to right.
// Malformed input on either side fails open: the result is true and
// the parse error is returned for diagnostics, so a bad version
// string never locks a plugin out.
func CompatibleVersion(required, current string) (bool, error) {
	req, err := parseVersion(required)
	if err != nil {
		return true, err
	}
	cur, err := parseVersion(current)
	if err != nil {
		return true, err
	}
	for i := range req {
		if cur[i] != req[i] {
			return cur[i] > req[i], nil
		}
	}
	return true, nil
}
