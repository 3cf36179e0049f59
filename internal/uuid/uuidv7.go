package uuid

import (
	"time"

	googleuuid "github.com/google/uuid"
)

// New generates a new UUIDv7 based on the current timestamp.
// UUIDv7 is time-ordered, so recipe ids sort in creation order.
// Ids generated within the same millisecond stay monotonic because the
// underlying generator carries a sequence in the random bits.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// Fallback to UUIDv4 if the clock or random source fails
		return googleuuid.New().String()
	}
	return id.String()
}

// Time returns the creation time encoded in a UUIDv7 string.
// ok is false for malformed ids or ids of another version, such as the
// short numeric ids used by the seed recipes.
func Time(s string) (t time.Time, ok bool) {
	parsed, err := googleuuid.Parse(s)
	if err != nil || parsed.Version() != 7 {
		return time.Time{}, false
	}
	sec, nsec := parsed.Time().UnixTime()
	return time.Unix(sec, nsec), true
}
