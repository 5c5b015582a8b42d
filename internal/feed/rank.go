// Package feed holds the pure pieces of feed composition: the
// personalization score and the opaque pagination cursor.
package feed

import (
	"math"
	"time"
)

// Signals are the per-item personalization inputs for an authenticated
// viewer.
type Signals struct {
	FromFollowedUser bool
	Liked            bool
}

// Score computes the composite personalization score of a feed item:
//
//	10 * followed + 5 * liked + ln(likes+1) + max(0, 24 - hoursSinceCreation)/10
//
// Higher is better. The score is only used to re-sort a page that has
// already been fetched; it never changes which items a page contains, so
// personalization cannot promote an item from a later page onto an earlier
// one.
func Score(likeCount int64, createdAt time.Time, s Signals, now time.Time) float64 {
	var score float64
	if s.FromFollowedUser {
		score += 10
	}
	if s.Liked {
		score += 5
	}
	score += math.Log(float64(likeCount) + 1)
	if hours := now.Sub(createdAt).Hours(); hours < 24 {
		score += (24 - hours) / 10
	}
	return score
}
