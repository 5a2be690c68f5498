package permission

import "sort"

// Map associates each role with the page IDs its menu may display.
// Slices are duplicate-free; order carries no meaning.
type Map map[Role][]string

func (m Map) Clone() Map {
	out := make(Map, len(m))
	for r, ids := range m {
		out[r] = cloneIDs(ids)
	}
	return out
}

// Equal compares role keys and per-role membership, ignoring order.
func (m Map) Equal(other Map) bool {
	if len(m) != len(other) {
		return false
	}
	for r, ids := range m {
		o, ok := other[r]
		if !ok || !sameSet(ids, o) {
			return false
		}
	}
	return true
}

func (m Map) Contains(role Role, id string) bool {
	return containsID(m[role], id)
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func addID(ids []string, id string) []string {
	if containsID(ids, id) {
		return ids
	}
	return append(ids, id)
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = addID(out, id)
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]struct{}, len(a))
	for _, v := range a {
		seen[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := seen[v]; !ok {
			return false
		}
	}
	return true
}

func sortedRoles(roles map[Role]struct{}) []Role {
	out := make([]Role, 0, len(roles))
	for r := range roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
