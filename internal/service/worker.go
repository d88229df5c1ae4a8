package service

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/mmeshcher/piolas-market/internal/platform"
)

// StartProfileBackfill запускает фоновое дозаполнение аватаров из API платформы.
func (s *Service) StartProfileBackfill(ctx context.Context) {
	if s.platformClient == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.processProfileBatch(ctx)
			}
		}
	}()
}

func (s *Service) processProfileBatch(ctx context.Context) {
	users, err := s.repo.GetUsersWithoutProfilePic(ctx, 50)
	if err != nil {
		s.logger.Warn("select users for profile backfill", zap.Error(err))
		return
	}

	for _, u := range users {
		var pic string

		backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			p, err := s.platformClient.GetProfilePic(ctx, u.Login)
			if err != nil {
				if errors.Is(err, platform.ErrProfileNotFound) {
					return err
				}
				return retry.RetryableError(err)
			}
			pic = p
			return nil
		})
		if err != nil || pic == "" {
			continue
		}

		if err := s.repo.UpdateProfilePic(ctx, u.ID, pic); err != nil {
			s.logger.Warn("update profile pic", zap.Error(err), zap.Int64("userID", u.ID))
		}
	}
}
