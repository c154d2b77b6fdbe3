// Package rating aggregates review ratings into coaster and park ratings.
//
// Aggregation is a pure function of a resolved entity graph: callers load the
// children referenced by a coaster or park first (see repository.Resolver) and
// pass the resulting view in. A view whose children do not match its reference
// list is rejected with ErrUnresolved rather than read as "no reviews".
package rating

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/qs-lzh/coaster-review/internal/model"
)

var ErrUnresolved = errors.New("rating: child references are not resolved")

const notApplicableText = "N/A"

// Rating is a mean rounded to two decimals, or NotApplicable when there was
// nothing to average. The zero value is NotApplicable.
type Rating struct {
	value float64
	valid bool
}

var NotApplicable = Rating{}

// Of rounds v to two decimals.
func Of(v float64) Rating {
	return Rating{value: round2(v), valid: true}
}

func (r Rating) Value() (float64, bool) {
	return r.value, r.valid
}

func (r Rating) IsApplicable() bool {
	return r.valid
}

func (r Rating) String() string {
	if !r.valid {
		return notApplicableText
	}
	return strconv.FormatFloat(r.value, 'f', 2, 64)
}

func (r Rating) MarshalJSON() ([]byte, error) {
	if !r.valid {
		return []byte("null"), nil
	}
	return []byte(r.String()), nil
}

// Parse is the inverse of String.
func Parse(s string) (Rating, error) {
	if s == notApplicableText {
		return NotApplicable, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NotApplicable, fmt.Errorf("rating: parse %q: %w", s, err)
	}
	return Of(v), nil
}

type CoasterView struct {
	Coaster model.Coaster
	// ReviewIDs is the coaster's ordered reference list.
	ReviewIDs []uint
	// Reviews holds the loaded reviews, in ReviewIDs order.
	Reviews []model.Review
}

type ParkView struct {
	Park       model.Park
	CoasterIDs []uint
	Coasters   []CoasterView
}

func (v CoasterView) resolved() bool {
	if len(v.Reviews) != len(v.ReviewIDs) {
		return false
	}
	for i, r := range v.Reviews {
		if r.ID != v.ReviewIDs[i] {
			return false
		}
	}
	return true
}

func (v ParkView) resolved() bool {
	if len(v.Coasters) != len(v.CoasterIDs) {
		return false
	}
	for i, c := range v.Coasters {
		if c.Coaster.ID != v.CoasterIDs[i] {
			return false
		}
	}
	return true
}

// CoasterRating is the mean of the coaster's review ratings.
func CoasterRating(v CoasterView) (Rating, error) {
	if !v.resolved() {
		return NotApplicable, fmt.Errorf("coaster %q: %w", v.Coaster.Slug, ErrUnresolved)
	}
	if len(v.Reviews) == 0 {
		return NotApplicable, nil
	}

	sum := 0
	for _, r := range v.Reviews {
		sum += r.Rating
	}
	return Of(float64(sum) / float64(len(v.Reviews))), nil
}

// ParkRating is the mean of the ratings of the park's rated coasters. Unrated
// coasters count in neither the sum nor the divisor.
func ParkRating(v ParkView) (Rating, error) {
	if !v.resolved() {
		return NotApplicable, fmt.Errorf("park %q: %w", v.Park.Slug, ErrUnresolved)
	}

	total := 0.0
	rated := 0
	for _, c := range v.Coasters {
		r, err := CoasterRating(c)
		if err != nil {
			return NotApplicable, fmt.Errorf("park %q: %w", v.Park.Slug, err)
		}
		if value, ok := r.Value(); ok {
			total += value
			rated++
		}
	}

	if rated == 0 {
		return NotApplicable, nil
	}
	return Of(total / float64(rated)), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
