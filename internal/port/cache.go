package port

import (
	"context"

	"github.com/emberhollow/tradepost/internal/domain"
)

type Cache interface {
	SetBook(ctx context.Context, market string, snap *domain.BookSnapshot) error
	GetBook(ctx context.Context, market string) (*domain.BookSnapshot, error)
	Invalidate(ctx context.Context, market string) error
}
