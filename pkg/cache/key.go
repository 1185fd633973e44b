package cache

import "strings"

// keySep separates the components of an info key. It cannot appear in a
// validated ecosystem name.
const keySep = "|"

// Key returns the info keyspace key for a package identity. Keys are
// case-sensitive and used as given.
func Key(ecosystem, name, version string) string {
	return ecosystem + keySep + name + keySep + version
}

// SplitKey reverses [Key]. Package names may themselves contain the
// separator, so the ecosystem is taken from the front and the version from
// the back.
func SplitKey(key string) (ecosystem, name, version string, ok bool) {
	first := strings.Index(key, keySep)
	last := strings.LastIndex(key, keySep)
	if first < 0 || first == last {
		return "", "", "", false
	}
	return key[:first], key[first+1 : last], key[last+1:], true
}
