package domain

import (
	"time"
)

// Game is a persisted record in a user's collection. IDs are opaque and
// unique within one user's collection.
type Game struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Platform  string    `json:"platform"`
	Status    Status    `json:"status"`
	Rating    int       `json:"rating"`
	Notes     string    `json:"notes"`
	CoverPath string    `json:"coverPath,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Draft returns the edit buffer projection used by the edit screen.
func (g Game) Draft() Draft {
	return Draft{
		ID:        g.ID,
		Title:     g.Title,
		Platform:  g.Platform,
		Status:    g.Status,
		Rating:    float64(g.Rating),
		Notes:     g.Notes,
		CoverPath: g.CoverPath,
	}
}

type UserProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthPhase is the discriminant of the session state machine.
type AuthPhase string

const (
	PhaseLoading   AuthPhase = "LOADING"
	PhaseSignedOut AuthPhase = "SIGNED_OUT"
	PhaseSignedIn  AuthPhase = "SIGNED_IN"
)

// AuthState is a tagged union: User is set only when Phase is PhaseSignedIn.
type AuthState struct {
	Phase AuthPhase    `json:"phase"`
	User  *UserProfile `json:"user,omitempty"`
}

func Loading() AuthState   { return AuthState{Phase: PhaseLoading} }
func SignedOut() AuthState { return AuthState{Phase: PhaseSignedOut} }
func SignedIn(u UserProfile) AuthState {
	return AuthState{Phase: PhaseSignedIn, User: &u}
}
