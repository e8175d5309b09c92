package services

import "math/rand/v2"

// Public identifiers are drawn from [0, identifierMax). Uniqueness is
// enforced by the store's unique index at insert time; on a collision the
// caller redraws, up to identifierAttempts times.
const (
	identifierMax      = 100000
	identifierAttempts = 10
)

func randomIdentifier() int {
	return rand.IntN(identifierMax)
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func contains(ids []string, id string) bool {
	return indexOf(ids, id) != -1
}

// removeID returns ids without id. Removing an absent id is a no-op, which
// keeps cascade steps safe to re-run.
func removeID(ids []string, id string) []string {
	i := indexOf(ids, id)
	if i == -1 {
		return ids
	}
	return append(ids[:i], ids[i+1:]...)
}
