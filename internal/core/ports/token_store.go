package ports

import "context"

// Token Store keys.
const (
	KeyUserToken = "userToken"
	KeyUserID    = "userId"
)

// TokenStore persists opaque strings by key. Get returns "" with a nil error
// when the key is absent.
type TokenStore interface {
	Save(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
