package cache

import (
	"fmt"

	redis "github.com/redis/go-redis/v9"
)

// key names definition
const (
	CoasterRatingKey    = "rating:coaster:%d" // cached rating of a coaster, '%d' is coaster id
	ParkRatingKey       = "rating:park:%d"    // cached rating of a park, '%d' is park id
	RatingGenerationKey = "%s:gen"            // invalidation counter of a rating key, '%s' is the rating key
)

func MakeCoasterRatingKey(coasterID uint) string {
	return fmt.Sprintf(CoasterRatingKey, coasterID)
}

func MakeParkRatingKey(parkID uint) string {
	return fmt.Sprintf(ParkRatingKey, parkID)
}

func MakeRatingGenerationKey(ratingKey string) string {
	return fmt.Sprintf(RatingGenerationKey, ratingKey)
}

// KEYS[1]: rating key
// KEYS[2]: generation key of the rating
// ARGV[1]: rating text
// ARGV[2]: ttl in milliseconds
// ARGV[3]: generation read before the rating was computed
// return 1 if stored, 0 if the rating was invalidated in the meantime
var setRatingScript = redis.NewScript(`
local gen = redis.call("GET", KEYS[2])
if not gen then
	gen = "0"
end
if gen ~= ARGV[3] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)
