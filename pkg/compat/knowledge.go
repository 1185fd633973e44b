package compat

import (
	"slices"
	"sort"
	"strings"
)

// KnowledgeBase maps canonical license names to the licenses they may be
// combined with, plus curated explanations for known conflicts.
//
// A KnowledgeBase is immutable after construction.
type KnowledgeBase struct {
	compatible map[string][]string
	reasons    map[string]string
	aliases    map[string]string
}

// NewKnowledgeBase builds a knowledge base from an adjacency table, a reason
// table keyed by "A|B" and an alias table keyed by lowercase alias. Every
// canonical name in the adjacency table is also registered as its own
// lowercase alias.
func NewKnowledgeBase(compatible map[string][]string, reasons, aliases map[string]string) *KnowledgeBase {
	kb := &KnowledgeBase{
		compatible: make(map[string][]string, len(compatible)),
		reasons:    make(map[string]string, len(reasons)),
		aliases:    make(map[string]string, len(aliases)+len(compatible)),
	}
	for name, list := range compatible {
		kb.compatible[name] = slices.Clone(list)
		kb.aliases[strings.ToLower(name)] = name
	}
	for k, v := range reasons {
		kb.reasons[k] = v
	}
	for k, v := range aliases {
		kb.aliases[strings.ToLower(k)] = v
	}
	return kb
}

// Licenses returns the canonical license names in the table, sorted.
func (kb *KnowledgeBase) Licenses() []string {
	names := make([]string, 0, len(kb.compatible))
	for name := range kb.compatible {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CompatibleWith returns the adjacency list for a canonical license name.
func (kb *KnowledgeBase) CompatibleWith(license string) ([]string, bool) {
	list, ok := kb.compatible[license]
	return slices.Clone(list), ok
}

// lists reports whether a's adjacency list names b.
func (kb *KnowledgeBase) lists(a, b string) bool {
	return slices.Contains(kb.compatible[a], b)
}

func (kb *KnowledgeBase) reason(a, b string) (string, bool) {
	if r, ok := kb.reasons[a+"|"+b]; ok {
		return r, true
	}
	r, ok := kb.reasons[b+"|"+a]
	return r, ok
}

// Asymmetry is an adjacency entry that is not mirrored by the other license.
type Asymmetry struct {
	From string // License whose list names To
	To   string // License whose list does not name From (or is missing)
}

// Asymmetries lists every entry A→B without a matching B→A, sorted by From
// then To. An empty result means the table is symmetric.
func (kb *KnowledgeBase) Asymmetries() []Asymmetry {
	var out []Asymmetry
	for _, a := range kb.Licenses() {
		for _, b := range kb.compatible[a] {
			if !kb.lists(b, a) {
				out = append(out, Asymmetry{From: a, To: b})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

var (
	permissive   = []string{"MIT", "ISC", "BSD-2-Clause", "BSD-3-Clause", "0BSD", "Unlicense", "CC0-1.0", "Zlib", "BSL-1.0", "Python-2.0"}
	weakCopyleft = []string{"LGPL-2.1", "LGPL-3.0", "MPL-2.0", "EPL-2.0"}
	strongGPL    = []string{"GPL-2.0", "GPL-3.0", "AGPL-3.0"}
)

func defaultTable() map[string][]string {
	t := make(map[string][]string)
	link := func(a, b string) {
		if !slices.Contains(t[a], b) {
			t[a] = append(t[a], b)
		}
		if !slices.Contains(t[b], a) {
			t[b] = append(t[b], a)
		}
	}

	// Simple permissive licenses combine with everything.
	everything := slices.Concat(permissive, []string{"Apache-2.0"}, weakCopyleft, strongGPL)
	for _, p := range permissive {
		for _, other := range everything {
			link(p, other)
		}
	}

	link("Apache-2.0", "Apache-2.0")
	for _, l := range []string{"LGPL-3.0", "MPL-2.0", "EPL-2.0", "GPL-3.0", "AGPL-3.0"} {
		link("Apache-2.0", l)
	}

	link("GPL-2.0", "LGPL-2.1")
	link("GPL-2.0", "MPL-2.0")

	for _, l := range []string{"LGPL-2.1", "LGPL-3.0", "MPL-2.0", "AGPL-3.0"} {
		link("GPL-3.0", l)
	}
	for _, l := range []string{"LGPL-3.0", "MPL-2.0"} {
		link("AGPL-3.0", l)
	}

	for _, a := range weakCopyleft {
		for _, b := range weakCopyleft {
			link(a, b)
		}
	}
	for _, l := range strongGPL {
		link(l, l)
	}
	return t
}

var defaultReasons = map[string]string{
	"GPL-2.0|Apache-2.0":  "Apache-2.0 patent termination and indemnification clauses are additional restrictions that GPL-2.0 does not permit",
	"GPL-2.0|GPL-3.0":     "GPL-2.0-only and GPL-3.0 are both strong copyleft licenses with conflicting terms; a combined work cannot satisfy both",
	"GPL-2.0|AGPL-3.0":    "AGPL-3.0 is based on GPL-3.0 and its network-use terms cannot be reconciled with GPL-2.0-only",
	"GPL-2.0|LGPL-3.0":    "LGPL-3.0 incorporates GPL-3.0 terms, which conflict with GPL-2.0-only",
	"GPL-2.0|EPL-2.0":     "EPL-2.0 is incompatible with the GPL unless GPL is designated as a Secondary License",
	"GPL-3.0|EPL-2.0":     "EPL-2.0 is incompatible with the GPL unless GPL is designated as a Secondary License",
	"AGPL-3.0|EPL-2.0":    "EPL-2.0 is incompatible with the GPL family unless GPL is designated as a Secondary License",
	"AGPL-3.0|LGPL-2.1":   "LGPL-2.1 code must be relicensed under GPL-3.0 or later before it can be combined with AGPL-3.0",
	"Apache-2.0|LGPL-2.1": "LGPL-2.1-only does not accept the additional patent terms of Apache-2.0",
}

var defaultAliases = map[string]string{
	"mit license":     "MIT",
	"the mit license": "MIT",
	"expat":           "MIT",
	"mit/x11":         "MIT",

	"apache":                         "Apache-2.0",
	"apache-2":                       "Apache-2.0",
	"apache 2":                       "Apache-2.0",
	"apache 2.0":                     "Apache-2.0",
	"apache2":                        "Apache-2.0",
	"apache license 2.0":             "Apache-2.0",
	"apache license, version 2.0":    "Apache-2.0",
	"apache software license":        "Apache-2.0",
	"apache software license 2.0":    "Apache-2.0",
	"apache license (2.0)":           "Apache-2.0",
	"apache-2.0 with llvm-exception": "Apache-2.0",

	"bsd":                  "BSD-3-Clause",
	"bsd license":          "BSD-3-Clause",
	"bsd-3":                "BSD-3-Clause",
	"bsd 3-clause":         "BSD-3-Clause",
	"bsd 3-clause license": "BSD-3-Clause",
	"new bsd":              "BSD-3-Clause",
	"new bsd license":      "BSD-3-Clause",
	"modified bsd license": "BSD-3-Clause",
	"bsd-2":                "BSD-2-Clause",
	"bsd 2-clause":         "BSD-2-Clause",
	"bsd 2-clause license": "BSD-2-Clause",
	"simplified bsd":       "BSD-2-Clause",
	"freebsd":              "BSD-2-Clause",

	"isc license":                        "ISC",
	"isc license (iscl)":                 "ISC",
	"zero-clause bsd":                    "0BSD",
	"the unlicense":                      "Unlicense",
	"the unlicense (unlicense)":          "Unlicense",
	"cc0":                                "CC0-1.0",
	"cc0 1.0 universal":                  "CC0-1.0",
	"public domain":                      "CC0-1.0",
	"zlib license":                       "Zlib",
	"zlib/libpng":                        "Zlib",
	"boost":                              "BSL-1.0",
	"boost software license 1.0":         "BSL-1.0",
	"psf":                                "Python-2.0",
	"psf-2.0":                            "Python-2.0",
	"python software foundation license": "Python-2.0",

	"gpl-2":                                 "GPL-2.0",
	"gpl2":                                  "GPL-2.0",
	"gplv2":                                 "GPL-2.0",
	"gpl-2.0-only":                          "GPL-2.0",
	"gpl-2.0-or-later":                      "GPL-2.0",
	"gpl-2.0+":                              "GPL-2.0",
	"gnu gpl v2":                            "GPL-2.0",
	"gnu general public license v2 (gplv2)": "GPL-2.0",
	"gpl":                                   "GPL-3.0",
	"gpl-3":                                 "GPL-3.0",
	"gpl3":                                  "GPL-3.0",
	"gplv3":                                 "GPL-3.0",
	"gpl-3.0-only":                          "GPL-3.0",
	"gpl-3.0-or-later":                      "GPL-3.0",
	"gpl-3.0+":                              "GPL-3.0",
	"gnu gpl v3":                            "GPL-3.0",
	"gnu general public license v3 (gplv3)": "GPL-3.0",

	"lgpl-2.1-only":                                 "LGPL-2.1",
	"lgpl-2.1-or-later":                             "LGPL-2.1",
	"lgplv2.1":                                      "LGPL-2.1",
	"lgpl":                                          "LGPL-3.0",
	"lgpl-3":                                        "LGPL-3.0",
	"lgplv3":                                        "LGPL-3.0",
	"lgpl-3.0-only":                                 "LGPL-3.0",
	"lgpl-3.0-or-later":                             "LGPL-3.0",
	"gnu lesser general public license v3 (lgplv3)": "LGPL-3.0",

	"agpl":                                 "AGPL-3.0",
	"agpl-3":                               "AGPL-3.0",
	"agplv3":                               "AGPL-3.0",
	"agpl-3.0-only":                        "AGPL-3.0",
	"agpl-3.0-or-later":                    "AGPL-3.0",
	"gnu affero general public license v3": "AGPL-3.0",

	"mpl":                                  "MPL-2.0",
	"mpl-2":                                "MPL-2.0",
	"mpl 2.0":                              "MPL-2.0",
	"mozilla public license 2.0 (mpl 2.0)": "MPL-2.0",
	"epl-2":                                "EPL-2.0",
	"eclipse public license 2.0":           "EPL-2.0",

	"sspl":                    "SSPL-1.0",
	"busl":                    "BUSL-1.1",
	"business source license": "BUSL-1.1",
}

// DefaultKnowledgeBase returns the curated table shipped with licensetower.
func DefaultKnowledgeBase() *KnowledgeBase {
	return NewKnowledgeBase(defaultTable(), defaultReasons, defaultAliases)
}
