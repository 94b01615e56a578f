package model

// SyncDeltaResponse is the API response for feed delta sync. Consecutive
// responses may repeat items; clients dedupe by id. HasMore means the next
// page can be requested immediately with SyncTimestamp.
type SyncDeltaResponse struct {
	Memes         []Meme    `json:"memes"`
	Comments      []Comment `json:"comments"`
	SyncTimestamp string    `json:"syncTimestamp"`
	HasMore       bool      `json:"hasMore"`
}
