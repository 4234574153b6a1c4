package adapter

import (
	"strings"

	"github.com/partsignal/sourcing-cli/internal/parse"
)

// Distributor payloads carry the same logical value under different key
// names and nesting depending on API version. Each probe walks an ordered
// key list and keeps the first non-empty hit. Keys may be dotted paths
// ("Classifications.HtsusCode") to reach nested objects.

// lookupPath resolves a possibly dotted key path inside a raw payload.
func lookupPath(m map[string]any, path string) (any, bool) {
	cur := any(m)
	for _, seg := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[seg]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// probeString returns the first non-empty string among keys. Nested objects
// of the form {"name": ...}, {"Value": ...} or {"Status": ...} are unwrapped,
// matching how distributors wrap manufacturer, category, and status fields.
func probeString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := lookupPath(m, k)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if t != "" {
				return t
			}
		case map[string]any:
			for _, nk := range []string{"name", "Name", "Value", "value", "Status", "status"} {
				if s, ok := t[nk].(string); ok && s != "" {
					return s
				}
			}
		}
	}
	return ""
}

// probeInt returns the first parseable non-zero integer among keys. JSON
// numbers arrive as float64; formatted strings ("1,234 In Stock") go through
// parse.Quantity.
func probeInt(m map[string]any, keys ...string) int {
	for _, k := range keys {
		v, ok := lookupPath(m, k)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			if t > 0 {
				return int(t)
			}
		case int:
			if t > 0 {
				return t
			}
		case string:
			if n := parse.Quantity(t); n > 0 {
				return n
			}
		}
	}
	return 0
}

// probeBool returns true if any key holds a truthy tariff-style value:
// boolean true, or a string like "Active", "Yes", "True".
func probeBool(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		v, ok := lookupPath(m, k)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case bool:
			if t {
				return true
			}
		case string:
			switch strings.ToLower(strings.TrimSpace(t)) {
			case "active", "yes", "true", "applied":
				return true
			}
		}
	}
	return false
}

// probeList returns the first non-empty list of objects among keys, used for
// price-break arrays.
func probeList(m map[string]any, keys ...string) []map[string]any {
	for _, k := range keys {
		v, ok := lookupPath(m, k)
		if !ok {
			continue
		}
		raw, ok := v.([]any)
		if !ok || len(raw) == 0 {
			continue
		}
		out := make([]map[string]any, 0, len(raw))
		for _, e := range raw {
			if obj, ok := e.(map[string]any); ok {
				out = append(out, obj)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// leadKey names an upstream lead-time field and whether its numeric form is
// expressed in days rather than weeks. String values carry their own unit in
// text and are parsed by parse.LeadWeeks regardless of the flag.
type leadKey struct {
	key  string
	days bool
}

// probeLeadWeeks resolves a lead time in whole weeks across the given keys.
func probeLeadWeeks(m map[string]any, keys ...leadKey) int {
	for _, lk := range keys {
		v, ok := lookupPath(m, lk.key)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			n := int(t)
			if n <= 0 {
				continue
			}
			if lk.days {
				return parse.WeeksFromDays(n)
			}
			return n
		case string:
			if n := parse.LeadWeeks(t); n > 0 {
				return n
			}
		}
	}
	return 0
}
