package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mmeshcher/piolas-market/internal/model"
)

// CreateBingoRoom создаёт комнату бинго с указанным кодом присоединения.
func (r *PostgresRepository) CreateBingoRoom(ctx context.Context, code string, hostID int64) (*model.BingoRoom, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO bingo_rooms (code, host_id, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		code, hostID, string(model.RoomStatusOpen),
	)

	room := model.BingoRoom{
		Code:   code,
		HostID: hostID,
		Status: model.RoomStatusOpen,
		Drawn:  []int64{},
	}
	if err := row.Scan(&room.ID, &room.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert bingo room: %w", err)
	}
	return &room, nil
}

// GetBingoRoom возвращает комнату по коду присоединения.
func (r *PostgresRepository) GetBingoRoom(ctx context.Context, code string) (*model.BingoRoom, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, code, host_id, status, drawn, winner_id, created_at
		 FROM bingo_rooms WHERE code = $1`,
		code,
	)

	var room model.BingoRoom
	var status string
	err := row.Scan(&room.ID, &room.Code, &room.HostID, &status, &room.Drawn, &room.WinnerID, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("get bingo room: %w", err)
	}
	room.Status = model.RoomStatus(status)

	return &room, nil
}

// AddDrawnNumber добавляет вытянутый номер и переводит комнату в состояние игры.
func (r *PostgresRepository) AddDrawnNumber(ctx context.Context, roomID, number int64) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE bingo_rooms SET drawn = array_append(drawn, $2), status = $3 WHERE id = $1`,
		roomID, number, string(model.RoomStatusPlaying),
	)
	if err != nil {
		return fmt.Errorf("add drawn number: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// FinishBingoRoom завершает игру и фиксирует победителя.
func (r *PostgresRepository) FinishBingoRoom(ctx context.Context, roomID, winnerID int64) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE bingo_rooms SET status = $2, winner_id = $3 WHERE id = $1`,
		roomID, string(model.RoomStatusFinished), winnerID,
	)
	if err != nil {
		return fmt.Errorf("finish bingo room: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// CreateBingoBoard сохраняет карточку участника. Повторное сохранение не меняет карточку.
func (r *PostgresRepository) CreateBingoBoard(ctx context.Context, board model.BingoBoard) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO bingo_boards (room_id, user_id, numbers)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (room_id, user_id) DO NOTHING`,
		board.RoomID, board.UserID, board.Numbers,
	)
	if err != nil {
		return fmt.Errorf("insert bingo board: %w", err)
	}
	return nil
}

// GetBingoBoard возвращает карточку участника в комнате.
func (r *PostgresRepository) GetBingoBoard(ctx context.Context, roomID, userID int64) (*model.BingoBoard, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT room_id, user_id, numbers FROM bingo_boards WHERE room_id = $1 AND user_id = $2`,
		roomID, userID,
	)

	var b model.BingoBoard
	err := row.Scan(&b.RoomID, &b.UserID, &b.Numbers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBoardNotFound
		}
		return nil, fmt.Errorf("get bingo board: %w", err)
	}
	return &b, nil
}

// GetBingoBoards возвращает все карточки комнаты.
func (r *PostgresRepository) GetBingoBoards(ctx context.Context, roomID int64) ([]model.BingoBoard, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT room_id, user_id, numbers FROM bingo_boards WHERE room_id = $1 ORDER BY user_id`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("select bingo boards: %w", err)
	}
	defer rows.Close()

	var res []model.BingoBoard
	for rows.Next() {
		var b model.BingoBoard
		if err := rows.Scan(&b.RoomID, &b.UserID, &b.Numbers); err != nil {
			return nil, fmt.Errorf("scan bingo board: %w", err)
		}
		res = append(res, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}
