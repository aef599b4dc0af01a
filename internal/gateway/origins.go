package gateway

// AllowList is the set of origins permitted to submit. An empty list means
// the open policy: every origin, including an absent one, is allowed.
type AllowList []string

// Allows reports whether a submission from origin may proceed. With a
// non-empty list the origin must be present and match exactly.
func (a AllowList) Allows(origin string) bool {
	if len(a) == 0 {
		return true
	}
	if origin == "" {
		return false
	}
	for _, allowed := range a {
		if origin == allowed {
			return true
		}
	}
	return false
}
