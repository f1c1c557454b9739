// Package server exposes the UI-facing contract to the app shell as a
// JSON-over-HTTP bridge: state snapshots, intents, and a change
// notification long-poll. The shell never mutates persisted state
// directly; every mutation goes through a controller.
package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"gameshelf/internal/constants"
	"gameshelf/internal/domain"
	"gameshelf/internal/service"
	"gameshelf/internal/signal"

	"github.com/rs/zerolog"
)

type Server struct {
	session    *service.Session
	collection *service.Collection
	hub        *signal.Hub
	logger     zerolog.Logger
}

func New(session *service.Session, collection *service.Collection, hub *signal.Hub, logger zerolog.Logger) *Server {
	return &Server{session: session, collection: collection, hub: hub, logger: logger}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/session", s.handleSessionSnapshot)
	mux.HandleFunc("POST /api/session/sign-in", s.handleSignIn)
	mux.HandleFunc("POST /api/session/register", s.handleRegister)
	mux.HandleFunc("POST /api/session/password-reset", s.handlePasswordReset)
	mux.HandleFunc("POST /api/session/email", s.handleUpdateEmail)
	mux.HandleFunc("POST /api/session/password", s.handleUpdatePassword)
	mux.HandleFunc("POST /api/session/delete", s.handleDeleteAccount)
	mux.HandleFunc("POST /api/session/sign-out", s.handleSignOut)
	mux.HandleFunc("POST /api/session/dismiss", s.handleSessionDismiss)

	mux.HandleFunc("GET /api/games", s.handleGamesSnapshot)
	mux.HandleFunc("POST /api/games", s.handleSaveGame)
	mux.HandleFunc("POST /api/games/reload", s.handleReload)
	mux.HandleFunc("POST /api/games/delete", s.handleDeleteGame)
	mux.HandleFunc("POST /api/games/delete-selection", s.handleDeleteSelection)
	mux.HandleFunc("POST /api/games/filters", s.handleFilters)
	mux.HandleFunc("POST /api/games/toggle-selection", s.handleToggleSelection)
	mux.HandleFunc("POST /api/games/dismiss", s.handleGamesDismiss)

	mux.HandleFunc("GET /api/events", s.handleEvents)

	return mux
}

// configureCollection propagates the current auth state into the
// collection controller, the shell's reset path on every auth change.
func (s *Server) configureCollection() {
	s.collection.Configure(s.session.CurrentUser())
}

func (s *Server) handleSessionSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}
	s.session.SignIn(r.Context(), req.Email, req.Password)
	s.configureCollection()
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}
	s.session.Register(r.Context(), req.Email, req.Password)
	s.configureCollection()
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.session.SendPasswordReset(r.Context(), req.Email)
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleUpdateEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewEmail        string `json:"newEmail"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.session.UpdateEmail(r.Context(), req.CurrentPassword, req.NewEmail)
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.session.UpdatePassword(r.Context(), req.CurrentPassword, req.NewPassword)
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := s.session.DeleteAccount(r.Context(), req.Password, s.collection.WipeAll); err != nil {
		s.logger.Error().Err(err).Msg("account data cleanup failed")
		http.Error(w, "account data cleanup failed", http.StatusInternalServerError)
		return
	}
	s.configureCollection()
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	s.session.SignOut(r.Context())
	s.configureCollection()
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleSessionDismiss(w http.ResponseWriter, r *http.Request) {
	s.session.ClearMessage()
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleGamesSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.collection.Snapshot())
}

type saveGameRequest struct {
	Draft            domain.Draft `json:"draft"`
	ImageData        string       `json:"imageData,omitempty"`
	RemovedCoverPath string       `json:"removedCoverPath,omitempty"`
}

func (s *Server) handleSaveGame(w http.ResponseWriter, r *http.Request) {
	var req saveGameRequest
	if !decode(w, r, &req) {
		return
	}

	var imageData []byte
	if req.ImageData != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ImageData)
		if err != nil {
			http.Error(w, "invalid image data", http.StatusBadRequest)
			return
		}
		imageData = decoded
	}

	s.collection.Save(r.Context(), req.Draft, imageData, req.RemovedCoverPath)
	writeJSON(w, http.StatusOK, s.collection.Snapshot())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.collection.LoadGames(r.Context())
	writeJSON(w, http.StatusOK, s.collection.Snapshot())
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if !decode(w, r, &req) {
		return
	}

	for _, g := range s.collection.Snapshot().Games {
		if g.ID == req.ID {
			s.collection.Delete(r.Context(), g)
			break
		}
	}
	writeJSON(w, http.StatusOK, s.collection.Snapshot())
}

func (s *Server) handleDeleteSelection(w http.ResponseWriter, r *http.Request) {
	s.collection.DeleteSelection(r.Context())
	writeJSON(w, http.StatusOK, s.collection.Snapshot())
}

type filtersRequest struct {
	Search       *string `json:"search,omitempty"`
	StatusFilter *string `json:"statusFilter,omitempty"`
	SortKey      *string `json:"sortKey,omitempty"`
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	var req filtersRequest
	if !decode(w, r, &req) {
		return
	}

	if req.Search != nil {
		s.collection.SetSearch(*req.Search)
	}
	if req.StatusFilter != nil {
		if *req.StatusFilter == "" {
			s.collection.SetStatusFilter(nil)
		} else {
			status, err := domain.ParseStatus(*req.StatusFilter)
			if err != nil {
				http.Error(w, "unknown status filter", http.StatusBadRequest)
				return
			}
			s.collection.SetStatusFilter(&status)
		}
	}
	if req.SortKey != nil {
		s.collection.SetSortKey(domain.SortKey(*req.SortKey))
	}
	writeJSON(w, http.StatusOK, s.collection.Snapshot())
}

func (s *Server) handleToggleSelection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.collection.ToggleSelection(req.ID)
	writeJSON(w, http.StatusOK, s.collection.Snapshot())
}

func (s *Server) handleGamesDismiss(w http.ResponseWriter, r *http.Request) {
	s.collection.ClearMessage()
	writeJSON(w, http.StatusOK, s.collection.Snapshot())
}

// handleEvents long-polls the signal hub: it returns as soon as any
// controller publishes new state, or after the poll window with
// changed=false.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ch, cancel := s.hub.Subscribe()
	defer cancel()

	select {
	case <-ch:
		writeJSON(w, http.StatusOK, map[string]bool{"changed": true})
	case <-r.Context().Done():
	case <-time.After(constants.EventPollWait):
		writeJSON(w, http.StatusOK, map[string]bool{"changed": false})
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
