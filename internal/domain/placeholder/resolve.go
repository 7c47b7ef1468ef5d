package placeholder

import (
	"fmt"

	"github.com/mcpp-project/mcpp-core/internal/domain/cache"
)

// Tracking is the counter/evidence record returned alongside every
// resolved tree: total placeholder occurrences encountered, how many
// resolved, how many failed, and which placeholder strings failed.
type Tracking struct {
	Total      int      `json:"total"`
	Resolved   int      `json:"resolved"`
	Failed     int      `json:"failed"`
	Unresolved []string `json:"unresolved"`
}

// ResolveWithTracking walks data (a decoded JSON value: string, number,
// bool, nil, []interface{}, or map[string]interface{}) and resolves every
// placeholder it finds against store. Strings are handled by the sole vs
// embedded grammar; arrays are walked element-wise; objects are walked
// value-wise with keys left untouched; every other scalar passes through
// unchanged. The walk never mutates the input — it always builds a new
// tree, which is what makes a second pass over an already-resolved tree a
// no-op (idempotence): no placeholder syntax remains, so nothing matches.
func ResolveWithTracking(store cache.Store, data interface{}) (interface{}, Tracking) {
	var tr Tracking
	resolved := walk(store, data, &tr)
	return resolved, tr
}

func walk(store cache.Store, node interface{}, tr *Tracking) interface{} {
	switch v := node.(type) {
	case string:
		return resolveString(store, v, tr)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, elem := range v {
			out[i] = walk(store, elem, tr)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, elem := range v {
			out[k] = walk(store, elem, tr)
		}
		return out
	default:
		return v
	}
}

func resolveString(store cache.Store, s string, tr *Tracking) interface{} {
	if m := solePattern.FindStringSubmatch(s); m != nil {
		tr.Total++
		ref, ok := Parse(m[1])
		if !ok {
			tr.Failed++
			tr.Unresolved = append(tr.Unresolved, s)
			return s
		}
		val, status := Lookup(store, ref)
		if status != StatusResolved {
			tr.Failed++
			tr.Unresolved = append(tr.Unresolved, s)
			return s
		}
		tr.Resolved++
		return val
	}

	matches := embeddedPattern.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s
	}

	var out []byte
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		bodyStart, bodyEnd := m[2], m[3]
		body := s[bodyStart:bodyEnd]

		tr.Total++
		placeholder := s[start:end]

		ref, ok := Parse(body)
		if !ok {
			tr.Failed++
			tr.Unresolved = append(tr.Unresolved, placeholder)
			out = append(out, s[last:end]...)
			last = end
			continue
		}

		val, status := Lookup(store, ref)
		if status != StatusResolved {
			tr.Failed++
			tr.Unresolved = append(tr.Unresolved, placeholder)
			out = append(out, s[last:end]...)
			last = end
			continue
		}

		tr.Resolved++
		out = append(out, s[last:start]...)
		out = append(out, stringify(val)...)
		last = end
	}
	out = append(out, s[last:]...)
	return string(out)
}

// stringify renders a resolved cell value the way an embedded placeholder
// must appear in running text: no surrounding quotes on strings, no
// Go-ish struct formatting on nested values.
func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", t)
	}
}
