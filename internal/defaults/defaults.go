// Package defaults applies scoped front matter defaults from the site
// configuration to content files. Explicit front matter always wins;
// between overlapping rules the first declared rule wins.
package defaults

import (
	"path"
	"strings"
)

// Scope restricts which content files a rule applies to. An empty Path
// matches every file; a non-empty Path matches files under that prefix
// on segment boundaries. An empty Type matches every collection.
type Scope struct {
	Path string `yaml:"path"`
	Type string `yaml:"type"`
}

// Rule pairs a scope with the front matter values it supplies.
type Rule struct {
	Scope  Scope                  `yaml:"scope"`
	Values map[string]interface{} `yaml:"values"`
}

// Matches reports whether the scope covers the file at sourcePath in
// the given collection.
func (s Scope) Matches(sourcePath, collection string) bool {
	if s.Type != "" && s.Type != collection {
		return false
	}
	prefix := normalize(s.Path)
	if prefix == "" {
		return true
	}
	sp := normalize(sourcePath)
	if sp == prefix {
		return true
	}
	return strings.HasPrefix(sp, prefix+"/")
}

func normalize(p string) string {
	p = path.Clean(strings.TrimSpace(p))
	p = strings.Trim(p, "/")
	if p == "." {
		return ""
	}
	return p
}

// Apply merges matching rule values into fm, filling only keys the
// front matter does not already define. Rules are walked in declaration
// order, so when two rules supply the same key the first one declared
// wins. The returned map is fm itself unless fm was nil.
func Apply(rules []Rule, sourcePath, collection string, fm map[string]interface{}) map[string]interface{} {
	if fm == nil {
		fm = make(map[string]interface{})
	}
	for _, r := range rules {
		if !r.Scope.Matches(sourcePath, collection) {
			continue
		}
		for k, v := range r.Values {
			if _, exists := fm[k]; exists {
				continue
			}
			fm[k] = deepCopy(v)
		}
	}
	return fm
}

// deepCopy clones YAML-shaped values so pages never share mutable maps
// or slices with the rule set or with each other.
func deepCopy(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}
