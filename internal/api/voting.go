package api

import (
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/themesync/internal/domain"
	"github.com/MikeSquared-Agency/themesync/internal/voting"
)

// sessionView adds the computed expiry to a session.
type sessionView struct {
	domain.VotingSession
	ExpiresAt time.Time `json:"expiresAt"`
}

func viewOf(vs domain.VotingSession) sessionView {
	return sessionView{VotingSession: vs, ExpiresAt: vs.ExpiresAt()}
}

type createSessionRequest struct {
	ProjectID int64  `json:"projectId"`
	Name      string `json:"name"`
	Duration  int    `json:"duration"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if req.ProjectID == 0 {
		req.ProjectID = s.deps.ProjectID
	}
	vs, err := s.deps.Voting.CreateSession(r.Context(), req.ProjectID, req.Name, req.Duration)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(vs))
}

// activeSession answers with the session or a JSON null.
func (s *Server) activeSession(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectId")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	vs, err := s.deps.Voting.ActiveSession(r.Context(), projectID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if vs == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(*vs))
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	vs, err := s.deps.Voting.EndSession(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Session ended successfully",
		"session": viewOf(vs),
	})
}

func (s *Server) castVote(w http.ResponseWriter, r *http.Request) {
	var req voting.VoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	v, err := s.deps.Voting.Cast(r.Context(), req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) removeVote(w http.ResponseWriter, r *http.Request) {
	var req voting.VoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	removed, err := s.deps.Voting.Remove(r.Context(), req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Vote removed successfully",
		"removed": removed,
	})
}

// toggleVote answers with the voter's new state and the refreshed tally.
func (s *Server) toggleVote(w http.ResponseWriter, r *http.Request) {
	var req voting.VoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	voted, err := s.deps.Voting.Toggle(r.Context(), req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	tally, err := s.deps.Voting.Counts(r.Context(), req.SessionID, req.VoterToken)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"voted":      voted,
		"voteCounts": tally.Counts,
		"userVotes":  tally.UserVotes,
	})
}

func (s *Server) listVotes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sessionId")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	votes, err := s.deps.Voting.ListVotes(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if votes == nil {
		votes = []domain.Vote{}
	}
	writeJSON(w, http.StatusOK, votes)
}

func (s *Server) voteCounts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sessionId")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	tally, err := s.deps.Voting.Counts(r.Context(), id, r.URL.Query().Get("voterToken"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tally)
}
