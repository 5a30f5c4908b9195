// Package influence computes the user influence score: a weighted linear
// combination of follower count, views, likes, comments, and article count,
// rounded to two decimal places.
package influence

import (
	"math"
)

// Fixed factor weights. These are part of the leaderboard contract: changing
// them silently reorders every historical ranking, so they are constants, not
// configuration.
const (
	WeightFollowers = 2.0
	WeightViews     = 0.5
	WeightLikes     = 1.0
	WeightComments  = 0.8
	WeightArticles  = 1.5
)

// roundPlaces is the number of decimal places scores are rounded to.
const roundPlaces = 2

// Stats carries the raw per-user counts the score is derived from.
type Stats struct {
	Followers int64
	Views     int64
	Likes     int64
	Comments  int64
	Articles  int64
}

// Factor is one weighted component of a score.
type Factor struct {
	Name         string  `json:"name"`
	Count        int64   `json:"count"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Breakdown explains a score factor by factor. The contributions sum to
// Total within rounding tolerance.
type Breakdown struct {
	Factors []Factor `json:"factors"`
	Total   float64  `json:"total"`
}

// Score computes the influence score for the given stats.
func Score(s Stats) float64 {
	total := float64(s.Followers)*WeightFollowers +
		float64(s.Views)*WeightViews +
		float64(s.Likes)*WeightLikes +
		float64(s.Comments)*WeightComments +
		float64(s.Articles)*WeightArticles
	return Round(total)
}

// Compute returns the per-factor breakdown for the given stats.
func Compute(s Stats) Breakdown {
	factors := []Factor{
		{Name: "followers", Count: s.Followers, Weight: WeightFollowers},
		{Name: "views", Count: s.Views, Weight: WeightViews},
		{Name: "likes", Count: s.Likes, Weight: WeightLikes},
		{Name: "comments", Count: s.Comments, Weight: WeightComments},
		{Name: "articles", Count: s.Articles, Weight: WeightArticles},
	}
	for i := range factors {
		factors[i].Contribution = Round(float64(factors[i].Count) * factors[i].Weight)
	}
	return Breakdown{Factors: factors, Total: Score(s)}
}

// Round rounds to the contract's two decimal places.
func Round(x float64) float64 {
	scale := math.Pow(10, roundPlaces)
	return math.Round(x*scale) / scale
}
