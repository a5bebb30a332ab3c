package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/3min-career/careerbot/internal/models"
)

// DefaultRecordListLimit bounds the record listing when no limit is given.
const DefaultRecordListLimit = 30

// webhookHandler handles the Kakao skill webhook (POST /webhook). Whatever
// goes wrong, the platform gets the apology envelope rather than an error it
// would show as a broken bubble.
func (s *Server) webhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("webhookHandler panicked", "panic", rec)
			writeApologyResponse(w)
		}
	}()

	var req models.SkillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("webhookHandler invalid JSON", "error", err)
		writeApologyResponse(w)
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("webhookHandler invalid payload", "error", err)
		writeApologyResponse(w)
		return
	}

	userID := req.UserRequest.User.ID
	utterance := req.UserRequest.Utterance
	slog.Debug("webhookHandler invoked", "kakaoUserID", userID, "action", req.Action.Name)

	resp := s.dispatcher.Dispatch(r.Context(), userID, utterance)
	writeJSONResponse(w, http.StatusOK, resp)
}

// statusHandler handles the health probe (GET /api/status).
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.StatusResponse{
		Status:    "running",
		Timestamp: time.Now(),
		Message:   "3분 커리어 챗봇 서버가 정상 작동 중입니다.",
	})
}

// chatHandler handles the local chat-test endpoint (POST /api/chat). It runs
// the same dispatch as the webhook but rejects incomplete payloads with a
// client error instead of an apology envelope.
func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("chatHandler panicked", "panic", rec)
			writeApologyResponse(w)
		}
	}()

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("chatHandler invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("chatHandler validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("userId와 message는 필수입니다."))
		return
	}

	slog.Debug("chatHandler invoked", "kakaoUserID", req.UserID)
	resp := s.dispatcher.Dispatch(r.Context(), req.UserID, req.Message)
	writeJSONResponse(w, http.StatusOK, resp)
}

// getUserHandler handles the profile lookup (GET /api/user/{id}).
func (s *Server) getUserHandler(w http.ResponseWriter, r *http.Request) {
	kakaoUserID := r.PathValue("id")
	slog.Debug("getUserHandler invoked", "kakaoUserID", kakaoUserID)

	user, err := s.st.GetUser(kakaoUserID)
	if err != nil {
		slog.Error("getUserHandler failed", "error", err, "kakaoUserID", kakaoUserID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("사용자 정보를 가져올 수 없습니다."))
		return
	}
	if user == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("User not found"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(user))
}

// listRecordsHandler handles the daily record listing
// (GET /api/user/{id}/records?limit=N), newest first.
func (s *Server) listRecordsHandler(w http.ResponseWriter, r *http.Request) {
	kakaoUserID := r.PathValue("id")

	limit := DefaultRecordListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid limit parameter"))
			return
		}
		limit = parsed
	}
	slog.Debug("listRecordsHandler invoked", "kakaoUserID", kakaoUserID, "limit", limit)

	records, err := s.st.ListDailyRecords(kakaoUserID, limit)
	if err != nil {
		slog.Error("listRecordsHandler failed", "error", err, "kakaoUserID", kakaoUserID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("기록을 가져올 수 없습니다."))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(records))
}
