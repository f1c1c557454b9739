package domain

import (
	"math"
	"strings"
	"time"
)

// Draft is the transient edit buffer for a game. It is never persisted
// directly; Commit converts it to a Game on save. Rating is continuous to
// back the stepper control and is rounded on commit. An empty ID means the
// draft creates a new record.
type Draft struct {
	ID        string  `json:"id,omitempty"`
	Title     string  `json:"title"`
	Platform  string  `json:"platform"`
	Status    Status  `json:"status"`
	Rating    float64 `json:"rating"`
	Notes     string  `json:"notes"`
	CoverPath string  `json:"coverPath,omitempty"`
}

// NewDraft returns the defaults for the create-game form.
func NewDraft() Draft {
	return Draft{Status: StatusBacklog, Rating: 3}
}

func (d Draft) IsNew() bool { return d.ID == "" }

// IsValid requires a non-empty trimmed title and platform. Drafts may be
// invalid while the user is typing.
func (d Draft) IsValid() bool {
	return strings.TrimSpace(d.Title) != "" && strings.TrimSpace(d.Platform) != ""
}

// Commit builds the persisted record: text fields trimmed, rating rounded
// to an integer, cover path as resolved by the caller.
func (d Draft) Commit(id, coverPath string, now time.Time) Game {
	return Game{
		ID:        id,
		Title:     strings.TrimSpace(d.Title),
		Platform:  strings.TrimSpace(d.Platform),
		Status:    d.Status,
		Rating:    int(math.Round(d.Rating)),
		Notes:     strings.TrimSpace(d.Notes),
		CoverPath: coverPath,
		UpdatedAt: now,
	}
}
