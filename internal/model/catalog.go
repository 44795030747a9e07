package model

import (
	"encoding/json"
	"time"
)

// DateLayout is the wire format for release dates.
const DateLayout = "2006-01-02"

type Song struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ArtistIDs   []string  `json:"artists"`
	ReleaseDate time.Time `json:"releaseDate"`
	Duration    string    `json:"duration"`
	Lyrics      *string   `json:"lyrics,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type SongList struct {
	Items []Song `json:"items"`
}

type SongQuery struct {
	Page  int
	Limit int
}

type Playlist struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"userId"`
	SongIDs   []string  `json:"songs"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuditActor struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	IP     string `json:"ip,omitempty"`
}

type AuditEntry struct {
	Action     string     `json:"action"`
	OccurredAt time.Time  `json:"occurred_at"`
	Actor      AuditActor `json:"actor"`
	Status     string     `json:"status"`
	Resource   string     `json:"resource,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// MarshalJSON renders ReleaseDate as a calendar date.
func (s Song) MarshalJSON() ([]byte, error) {
	type song Song
	return json.Marshal(struct {
		song
		ReleaseDate string `json:"releaseDate"`
	}{song: song(s), ReleaseDate: s.ReleaseDate.Format(DateLayout)})
}
