package cart

import (
	"context"

	apperrors "github.com/tgiffonirs/gomarketplace/pkg/errors"
)

type storeKey struct{}

// NewContext returns a copy of ctx that carries s. Everything downstream of
// ctx can reach the store through FromContext.
func NewContext(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

// FromContext returns the store carried by ctx. Outside a scope created by
// NewContext it returns a usage error.
func FromContext(ctx context.Context) (*Store, error) {
	s, ok := ctx.Value(storeKey{}).(*Store)
	if !ok || s == nil {
		return nil, apperrors.Usage("cart store must be used within a store scope")
	}
	return s, nil
}
