// Package storage provides the persistence primitive behind the chat and
// trip stores: a named blob of JSON, read and rewritten whole on every
// mutation. A missing name is not an error; callers treat corrupt content as
// an empty collection.
package storage

// Blob is the minimal persistence interface consumed by the stores.
type Blob interface {
	// Get returns the blob stored under name. The second return value is
	// false when no blob with that name exists.
	Get(name string) ([]byte, bool, error)
	// Set stores data under name, replacing any previous content.
	Set(name string, data []byte) error
}
