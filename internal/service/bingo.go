package service

import (
	"context"
	"errors"
	"math/rand"
	"slices"

	"github.com/mmeshcher/piolas-market/internal/model"
	"github.com/mmeshcher/piolas-market/internal/repository"
)

const (
	bingoBoardSize = 15
	bingoMaxNumber = 90
)

const roomCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

func newRoomCode() string {
	code := make([]byte, 6)
	for i := range code {
		code[i] = roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))]
	}
	return string(code)
}

func newBoardNumbers() []int64 {
	perm := rand.Perm(bingoMaxNumber)
	numbers := make([]int64, 0, bingoBoardSize)
	for _, n := range perm[:bingoBoardSize] {
		numbers = append(numbers, int64(n+1))
	}
	slices.Sort(numbers)
	return numbers
}

// CreateBingoRoom создаёт комнату бинго, создатель становится ведущим.
func (s *Service) CreateBingoRoom(ctx context.Context, hostID int64) (*model.BingoRoom, error) {
	return s.repo.CreateBingoRoom(ctx, newRoomCode(), hostID)
}

// JoinBingoRoom выдаёт участнику карточку в комнате.
// Повторное присоединение возвращает уже выданную карточку.
func (s *Service) JoinBingoRoom(ctx context.Context, code string, userID int64) (*model.BingoBoard, error) {
	room, err := s.repo.GetBingoRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.Status == model.RoomStatusFinished {
		return nil, ErrRoomFinished
	}

	board, err := s.repo.GetBingoBoard(ctx, room.ID, userID)
	if err == nil {
		return board, nil
	}
	if !errors.Is(err, repository.ErrBoardNotFound) {
		return nil, err
	}

	board = &model.BingoBoard{
		RoomID:  room.ID,
		UserID:  userID,
		Numbers: newBoardNumbers(),
	}
	if err := s.repo.CreateBingoBoard(ctx, *board); err != nil {
		return nil, err
	}
	return board, nil
}

// DrawBingoNumber вытягивает случайный невыпавший номер. Доступно только ведущему.
// Если после розыгрыша чья-то карточка закрыта полностью, комната завершается.
func (s *Service) DrawBingoNumber(ctx context.Context, code string, userID int64) (int64, *model.BingoRoom, error) {
	room, err := s.repo.GetBingoRoom(ctx, code)
	if err != nil {
		return 0, nil, err
	}
	if room.HostID != userID {
		return 0, nil, ErrNotRoomHost
	}
	if room.Status == model.RoomStatusFinished {
		return 0, nil, ErrRoomFinished
	}

	drawn := make(map[int64]bool, len(room.Drawn))
	for _, n := range room.Drawn {
		drawn[n] = true
	}

	var undrawn []int64
	for n := int64(1); n <= bingoMaxNumber; n++ {
		if !drawn[n] {
			undrawn = append(undrawn, n)
		}
	}
	if len(undrawn) == 0 {
		return 0, nil, ErrRoomFinished
	}

	number := undrawn[rand.Intn(len(undrawn))]
	if err := s.repo.AddDrawnNumber(ctx, room.ID, number); err != nil {
		return 0, nil, err
	}
	room.Drawn = append(room.Drawn, number)
	room.Status = model.RoomStatusPlaying
	drawn[number] = true

	boards, err := s.repo.GetBingoBoards(ctx, room.ID)
	if err != nil {
		return 0, nil, err
	}

	for _, b := range boards {
		if boardComplete(b, drawn) {
			if err := s.repo.FinishBingoRoom(ctx, room.ID, b.UserID); err != nil {
				return 0, nil, err
			}
			winnerID := b.UserID
			room.Status = model.RoomStatusFinished
			room.WinnerID = &winnerID
			break
		}
	}

	return number, room, nil
}

// GetBingoRoom возвращает состояние комнаты и карточку запрашивающего, если она выдана.
func (s *Service) GetBingoRoom(ctx context.Context, code string, userID int64) (*model.BingoRoom, *model.BingoBoard, error) {
	room, err := s.repo.GetBingoRoom(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	board, err := s.repo.GetBingoBoard(ctx, room.ID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrBoardNotFound) {
			return room, nil, nil
		}
		return nil, nil, err
	}

	return room, board, nil
}

func boardComplete(b model.BingoBoard, drawn map[int64]bool) bool {
	for _, n := range b.Numbers {
		if !drawn[n] {
			return false
		}
	}
	return true
}
