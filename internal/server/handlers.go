package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"ragserve/internal/history"
)

// defaultSession is used when no session cookie accompanies a chat
// request. All anonymous clients share one transcript.
const defaultSession = "default_session"

const sessionCookie = "session_id"

type questionRequest struct {
	Question string `json:"question"`
}

type chatRequest struct {
	HumanInput string `json:"human_input"`
}

type answerResponse struct {
	Answer string `json:"answer"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerativeAI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if err := validateBody(generativeAISchema, body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req questionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	answer, err := s.rag(r.Context(), req.Question)
	if err != nil {
		s.log.Error().Err(err).Msg("rag chain failed")
		writeError(w, http.StatusInternalServerError, "failed to generate answer")
		return
	}

	writeJSON(w, http.StatusOK, answerResponse{Answer: answer})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if err := validateBody(chatSchema, body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	sessionID := defaultSession
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		sessionID = cookie.Value
	}

	answer, err := s.chat(r.Context(), sessionID, req.HumanInput)
	if err != nil {
		if errors.Is(err, history.ErrInvalidSessionID) {
			writeError(w, http.StatusBadRequest, "invalid session id")
			return
		}
		s.log.Error().Err(err).Str("session", sessionID).Msg("chat chain failed")
		writeError(w, http.StatusInternalServerError, "failed to generate reply")
		return
	}

	writeJSON(w, http.StatusOK, answerResponse{Answer: answer})
}
