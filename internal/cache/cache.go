package cache

import (
	"context"
	"errors"

	"github.com/Universal-Commerce-Protocol/conformance/internal/domain"
)

type SessionCache interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Set(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCacheMiss = errors.New("cache miss")
