package obs

import "strings"

// CanonicalPath collapses resource identifiers in request paths so metric
// labels stay low-cardinality.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	segs := strings.Split(strings.Trim(path, "/"), "/")
	replaceLast := func(prefix ...string) bool {
		if len(segs) != len(prefix)+1 {
			return false
		}
		for i, p := range prefix {
			if segs[i] != p {
				return false
			}
		}
		return segs[len(segs)-1] != ""
	}
	switch {
	case replaceLast("api", "vehicles"),
		replaceLast("api", "vehicles", "end-auction"),
		replaceLast("api", "bids"),
		replaceLast("api", "bids", "vehicle"),
		replaceLast("api", "tickets", "refund"),
		replaceLast("api", "admin", "users"):
		segs[len(segs)-1] = ":id"
		return "/" + strings.Join(segs, "/")
	}
	return path
}
