// Package service реализует бизнес-логику сервиса piolas-market.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/mmeshcher/piolas-market/internal/cache"
	"github.com/mmeshcher/piolas-market/internal/model"
	"github.com/mmeshcher/piolas-market/internal/platform"
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	CreateUser(ctx context.Context, login string, passwordHash []byte) (int64, error)
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUserRole(ctx context.Context, userID int64, role model.Role) error
	UpdateProfilePic(ctx context.Context, userID int64, url string) error
	GetUsersWithoutProfilePic(ctx context.Context, limit int) ([]model.User, error)

	CreateProduct(ctx context.Context, p model.Product) (int64, error)
	UpdateProduct(ctx context.Context, p model.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)
	DecrementStock(ctx context.Context, productID, quantity int64) error

	GetChannelBalances(ctx context.Context, userID int64) ([]model.ChannelBalance, error)
	SetChannelBalance(ctx context.Context, userID int64, channel string, points, stars int64) error
	AdjustChannelBalance(ctx context.Context, userID int64, channel string, pointsDelta, starsDelta int64) error
	Leaderboard(ctx context.Context, channel string, limit int) ([]model.LeaderboardEntry, error)

	GetCart(ctx context.Context, userID int64) ([]model.CartItem, error)
	UpsertCartItem(ctx context.Context, userID int64, item model.CartItem) error
	RemoveCartItem(ctx context.Context, userID, productID int64) error
	ClearCart(ctx context.Context, userID int64) error

	CreatePurchase(ctx context.Context, p model.Purchase) error
	GetPurchasesByUser(ctx context.Context, userID int64) ([]model.Purchase, error)

	CreateChannel(ctx context.Context, c model.Channel) (int64, error)
	UpdateChannel(ctx context.Context, c model.Channel) error
	ListChannels(ctx context.Context) ([]model.Channel, error)

	CreateBingoRoom(ctx context.Context, code string, hostID int64) (*model.BingoRoom, error)
	GetBingoRoom(ctx context.Context, code string) (*model.BingoRoom, error)
	AddDrawnNumber(ctx context.Context, roomID, number int64) error
	FinishBingoRoom(ctx context.Context, roomID, winnerID int64) error
	CreateBingoBoard(ctx context.Context, board model.BingoBoard) error
	GetBingoBoard(ctx context.Context, roomID, userID int64) (*model.BingoBoard, error)
	GetBingoBoards(ctx context.Context, roomID int64) ([]model.BingoBoard, error)
}

// Service содержит бизнес-логику сервиса piolas-market.
type Service struct {
	repo           Repository
	cache          *cache.RedisCache
	platformClient *platform.Client
	logger         *zap.Logger
}

// NewService создаёт новый сервис. Кэш и клиент платформы необязательны.
func NewService(repo Repository, c *cache.RedisCache, pc *platform.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:           repo,
		cache:          c,
		platformClient: pc,
		logger:         logger,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.cache != nil {
		_ = s.cache.Close()
	}
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// RegisterUser регистрирует нового пользователя.
func (s *Service) RegisterUser(ctx context.Context, login, password string) (int64, error) {
	hashed := hashPassword(login, password)
	id, err := s.repo.CreateUser(ctx, login, hashed)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// AuthenticateUser проверяет логин и пароль пользователя и возвращает его идентификатор.
func (s *Service) AuthenticateUser(ctx context.Context, login, password string) (int64, error) {
	u, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		return 0, err
	}

	hashed := hashPassword(login, password)
	if hex.EncodeToString(hashed) != hex.EncodeToString(u.PasswordHash) {
		return 0, ErrInvalidCredentials
	}

	return u.ID, nil
}

func hashPassword(login, password string) []byte {
	sum := sha256.Sum256([]byte(login + ":" + password))
	return sum[:]
}

// GetUser возвращает пользователя по идентификатору.
func (s *Service) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// ListUsers возвращает всех пользователей.
func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.ListUsers(ctx)
}

// UpdateUserRole меняет роль пользователя.
func (s *Service) UpdateUserRole(ctx context.Context, userID int64, role model.Role) error {
	return s.repo.UpdateUserRole(ctx, userID, role)
}

// GetBalance возвращает балансы пользователя по каналам и агрегированные суммы.
func (s *Service) GetBalance(ctx context.Context, userID int64) (*model.Balance, error) {
	balances, err := s.repo.GetChannelBalances(ctx, userID)
	if err != nil {
		return nil, err
	}

	b := &model.Balance{Channels: balances}
	for _, cb := range balances {
		b.TotalPoints += cb.Points
		b.TotalStars += cb.Stars
	}
	return b, nil
}

// AdjustBalance применяет админскую корректировку баланса канала и
// инвалидирует кэш рейтинга.
func (s *Service) AdjustBalance(ctx context.Context, userID int64, channel string, pointsDelta, starsDelta int64) error {
	if err := s.repo.AdjustChannelBalance(ctx, userID, channel, pointsDelta, starsDelta); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, cache.KeyLeaderboard); err != nil {
		s.logger.Warn("invalidate leaderboard cache", zap.Error(err))
	}
	return nil
}

// Leaderboard возвращает рейтинг по пиолам. Общий рейтинг (без фильтра по каналу) кэшируется.
func (s *Service) Leaderboard(ctx context.Context, channel string, limit int) ([]model.LeaderboardEntry, error) {
	if channel != "" {
		return s.repo.Leaderboard(ctx, channel, limit)
	}

	if data, err := s.cache.Get(ctx, cache.KeyLeaderboard); err == nil {
		var entries []model.LeaderboardEntry
		if err := json.Unmarshal(data, &entries); err == nil {
			return entries, nil
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("leaderboard cache read", zap.Error(err))
	}

	entries, err := s.repo.Leaderboard(ctx, channel, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(entries); err == nil {
		if err := s.cache.Set(ctx, cache.KeyLeaderboard, data); err != nil {
			s.logger.Warn("leaderboard cache write", zap.Error(err))
		}
	}

	return entries, nil
}

// ListProducts возвращает каталог товаров, используя кэш при его наличии.
func (s *Service) ListProducts(ctx context.Context) ([]model.Product, error) {
	if data, err := s.cache.Get(ctx, cache.KeyProducts); err == nil {
		var products []model.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("products cache read", zap.Error(err))
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(products); err == nil {
		if err := s.cache.Set(ctx, cache.KeyProducts, data); err != nil {
			s.logger.Warn("products cache write", zap.Error(err))
		}
	}

	return products, nil
}

// CreateProduct добавляет товар и инвалидирует кэш каталога.
func (s *Service) CreateProduct(ctx context.Context, p model.Product) (int64, error) {
	id, err := s.repo.CreateProduct(ctx, p)
	if err != nil {
		return 0, err
	}
	s.invalidateProducts(ctx)
	return id, nil
}

// UpdateProduct обновляет товар и инвалидирует кэш каталога.
func (s *Service) UpdateProduct(ctx context.Context, p model.Product) error {
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return err
	}
	s.invalidateProducts(ctx)
	return nil
}

// DeleteProduct удаляет товар и инвалидирует кэш каталога.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidateProducts(ctx)
	return nil
}

func (s *Service) invalidateProducts(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.KeyProducts); err != nil {
		s.logger.Warn("invalidate products cache", zap.Error(err))
	}
}

// GetPurchasesByUser возвращает историю покупок пользователя.
func (s *Service) GetPurchasesByUser(ctx context.Context, userID int64) ([]model.Purchase, error) {
	return s.repo.GetPurchasesByUser(ctx, userID)
}

// CreateChannel добавляет канал сообщества.
func (s *Service) CreateChannel(ctx context.Context, c model.Channel) (int64, error) {
	return s.repo.CreateChannel(ctx, c)
}

// UpdateChannel обновляет настройки канала.
func (s *Service) UpdateChannel(ctx context.Context, c model.Channel) error {
	return s.repo.UpdateChannel(ctx, c)
}

// ListChannels возвращает все каналы.
func (s *Service) ListChannels(ctx context.Context) ([]model.Channel, error) {
	return s.repo.ListChannels(ctx)
}
