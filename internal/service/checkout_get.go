package service

import (
	"context"
	"errors"
	"log"

	"github.com/Universal-Commerce-Protocol/conformance/internal/cache"
	"github.com/Universal-Commerce-Protocol/conformance/internal/domain"
)

// GetSession fetches a session. Reads go through the cache when one is
// configured; singleflight collapses concurrent misses for the same id.
func (s *CheckoutServiceImpl) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	v, err, _ := s.sfg.Do(id, func() (interface{}, error) {
		if s.cache != nil {
			session, err := s.cache.Get(ctx, id)
			if err == nil {
				return session, nil
			}
			if !errors.Is(err, cache.ErrCacheMiss) {
				log.Printf("cache get error: %v", err) // log cache error but continue
			}
		}

		session, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			go func() {
				if errSet := s.cache.Set(context.Background(), session); errSet != nil {
					log.Printf("cache set error: %v", errSet)
				}
			}()
		}

		return session, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Session), nil
}
