package manifest

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Resolve reduces a version constraint to the single version it names.
//
// A constraint resolves when it is a complete semantic version, optionally
// behind one of the operators "=", "==", "^", "~", ">=" or "v". Wildcards,
// partial versions, compound ranges and tags resolve to "".
func Resolve(constraint string) string {
	s := strings.TrimSpace(constraint)
	if s == "" || strings.ContainsAny(s, " |,<*") {
		return ""
	}
	for _, op := range []string{"==", ">=", "=", "^", "~"} {
		if rest, ok := strings.CutPrefix(s, op); ok {
			s = strings.TrimSpace(rest)
			break
		}
	}
	s = strings.TrimPrefix(s, "v")

	v, err := semver.StrictNewVersion(s)
	if err != nil {
		return ""
	}
	return v.String()
}
