package mq

// Queue names and message definitions

// immediate queue from the catalog services to the rating workflow
// deliver message to notify the workflow to re-warm the cached ratings touched by a write
const (
	CatalogRatingRefreshQueue = "catalog.rating.refresh"
)

type EventKind string

const (
	EventReviewPosted   EventKind = "review.posted"
	EventReviewDeleted  EventKind = "review.deleted"
	EventCoasterDeleted EventKind = "coaster.deleted"
	EventParkDeleted    EventKind = "park.deleted"
)

// CatalogEvent names the park and coaster whose ratings may have changed.
// Either id may be zero.
type CatalogEvent struct {
	Kind      EventKind `json:"kind"`
	ParkID    uint      `json:"park_id"`
	CoasterID uint      `json:"coaster_id"`
}

func (k EventKind) Valid() bool {
	switch k {
	case EventReviewPosted, EventReviewDeleted, EventCoasterDeleted, EventParkDeleted:
		return true
	}
	return false
}
