package data

import "sort"

// Stats maps a stat name (damage, health, light, ...) to its value.
type Stats map[string]int

// Clone returns an independent copy. A nil receiver yields an empty map.
func (s Stats) Clone() Stats {
	out := make(Stats, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Add merges delta into s.
func (s Stats) Add(delta Stats) {
	for k, v := range delta {
		s[k] += v
	}
}

// Get returns the value of name or zero.
func (s Stats) Get(name string) int { return s[name] }

// Keys returns the stat names in sorted order.
func (s Stats) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether both maps agree, treating missing keys as zero.
func (s Stats) Equal(o Stats) bool {
	for k, v := range s {
		if o[k] != v {
			return false
		}
	}
	for k, v := range o {
		if s[k] != v {
			return false
		}
	}
	return true
}
