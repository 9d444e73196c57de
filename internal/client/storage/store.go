package storage

import "context"

// Well-known keys.
const (
	KeyUser  = "user"
	KeyToken = "token"
	KeyTheme = "theme"
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error

	// Update runs fn atomically: either every write made through tx is
	// kept or none is.
	Update(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
