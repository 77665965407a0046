package pair

// Canonical returns the pair ordered so the smaller user id comes first.
// Every store access goes through this ordering, so a pair (a, b) and
// (b, a) always land on the same row.
func Canonical(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// Valid reports whether two user ids form a usable pair: both positive
// and not self-referential.
func Valid(a, b int64) bool {
	return a > 0 && b > 0 && a != b
}

// Involves reports whether userID is one of the pair.
func Involves(userID, a, b int64) bool {
	return userID == a || userID == b
}

// Counterpart returns the other member of the pair relative to userID.
// The caller must already know userID is part of the pair.
func Counterpart(userID, a, b int64) int64 {
	if userID == a {
		return b
	}
	return a
}
