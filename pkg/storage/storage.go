// Package storage provides the durable local key-value store the client
// keeps its cart and auth snapshots in, behind a small port so tests can
// swap in an in-memory double.
package storage

// Keys owned by the storefront client.
const (
	KeyCartItems  = "cartItems"
	KeyTotalItems = "totalItems"
	KeyToken      = "token"
	KeyUser       = "user"
)

// Store is the durable local key-value port. Get reports whether the key
// was present; absent keys are not errors.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	Close() error
}
