package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/piolas-market/internal/middleware"
	"github.com/mmeshcher/piolas-market/internal/model"
	"github.com/mmeshcher/piolas-market/internal/repository"
	"github.com/mmeshcher/piolas-market/internal/service"
)

type bingoRoomResponse struct {
	Code      string  `json:"code"`
	HostID    int64   `json:"host_id"`
	Status    string  `json:"status"`
	Drawn     []int64 `json:"drawn"`
	WinnerID  *int64  `json:"winner_id,omitempty"`
	Board     []int64 `json:"board,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func toBingoRoomResponse(room *model.BingoRoom, board *model.BingoBoard) bingoRoomResponse {
	resp := bingoRoomResponse{
		Code:      room.Code,
		HostID:    room.HostID,
		Status:    string(room.Status),
		Drawn:     room.Drawn,
		WinnerID:  room.WinnerID,
		CreatedAt: room.CreatedAt.Format(time.RFC3339),
	}
	if resp.Drawn == nil {
		resp.Drawn = []int64{}
	}
	if board != nil {
		resp.Board = board.Numbers
	}
	return resp
}

// CreateBingoRoom создаёт комнату бинго, создатель становится ведущим.
func (h *Handler) CreateBingoRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	room, err := h.service.CreateBingoRoom(r.Context(), userID)
	if err != nil {
		h.logger.Error("create bingo room error", zap.Error(err), zap.Int64("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSONStatus(w, http.StatusCreated, toBingoRoomResponse(room, nil))
}

// JoinBingoRoom выдаёт текущему пользователю карточку в комнате.
func (h *Handler) JoinBingoRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	code := chi.URLParam(r, "code")

	board, err := h.service.JoinBingoRoom(r.Context(), code, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRoomNotFound):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		case errors.Is(err, service.ErrRoomFinished):
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
		default:
			h.logger.Error("join bingo room error", zap.Error(err), zap.String("code", code))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, map[string][]int64{"board": board.Numbers})
}

// DrawBingoNumber вытягивает следующий номер. Доступно только ведущему комнаты.
func (h *Handler) DrawBingoNumber(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	code := chi.URLParam(r, "code")

	number, room, err := h.service.DrawBingoNumber(r.Context(), code, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRoomNotFound):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		case errors.Is(err, service.ErrNotRoomHost):
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		case errors.Is(err, service.ErrRoomFinished):
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
		default:
			h.logger.Error("draw bingo number error", zap.Error(err), zap.String("code", code))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	resp := struct {
		Number int64             `json:"number"`
		Room   bingoRoomResponse `json:"room"`
	}{
		Number: number,
		Room:   toBingoRoomResponse(room, nil),
	}
	h.writeJSON(w, resp)
}

// GetBingoRoom возвращает состояние комнаты и карточку текущего пользователя.
func (h *Handler) GetBingoRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	code := chi.URLParam(r, "code")

	room, board, err := h.service.GetBingoRoom(r.Context(), code, userID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("get bingo room error", zap.Error(err), zap.String("code", code))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, toBingoRoomResponse(room, board))
}
