package bandit

import "hash/fnv"

// holdoutBucket hashes a user id into [0, 100). It depends on nothing but the
// id, so assignment survives restarts and redeploys.
func holdoutBucket(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte("holdout:" + userID))
	return int(h.Sum32() % 100)
}

// inHoldout reports whether userID falls in the first pct buckets.
func inHoldout(userID string, pct int) bool {
	if pct <= 0 {
		return false
	}
	return holdoutBucket(userID) < pct
}
