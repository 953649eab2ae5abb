package domain

import "time"

const DefaultDigestHourUTC int64 = 8

type UserSettings struct {
	UserID        int64
	NewsAPIKey    string
	DigestHourUTC int64
	DigestEnabled bool
}

// LastSummary is the most recent summary a user received; a new one
// replaces it.
type LastSummary struct {
	UserID    int64
	URL       string
	Summary   string
	Degraded  bool
	CreatedAt time.Time
}

type DigestSubscriber struct {
	UserID     int64
	NewsAPIKey string
}
