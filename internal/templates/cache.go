// Package templates implements template class instantiation (spec §4.7):
// turning a reference like Template<A,B,...> into a concrete Class
// TypeEntry with specialized method signatures and behaviors, cached so
// repeated instantiation requests for the same (template, args) pair are
// free after the first.
package templates

import (
	"sync"

	"github.com/funvibe/langc/internal/typehash"
)

// key is the cache key: a template's TypeHash plus the ordered arg
// hashes that parameterize it.
type key struct {
	template typehash.Hash
	args     string // joined arg hashes, since a slice can't be a map key
}

func makeKey(template typehash.Hash, argHashes []typehash.Hash) key {
	var b []byte
	for _, h := range argHashes {
		b = append(b, []byte(h.String())...)
		b = append(b, 0)
	}
	return key{template: template, args: string(b)}
}

// Cache is a (template_hash, arg_hashes)-keyed instance cache, guarded by
// a mutex in the same shape as the teacher's ext build cache
// (funvibe-funxy/internal/ext/cache.go): check-before-build, store on
// success, identical re-request is a pure lookup.
type Cache struct {
	mu        sync.Mutex
	instances map[key]typehash.Hash
}

// NewCache returns an empty instance cache.
func NewCache() *Cache {
	return &Cache{instances: make(map[key]typehash.Hash)}
}

// Lookup returns the previously computed instance hash for
// (template, argHashes), if any.
func (c *Cache) Lookup(template typehash.Hash, argHashes []typehash.Hash) (typehash.Hash, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.instances[makeKey(template, argHashes)]
	return h, ok
}

// Store records the instance hash produced for (template, argHashes).
func (c *Cache) Store(template typehash.Hash, argHashes []typehash.Hash, instance typehash.Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instances[makeKey(template, argHashes)] = instance
}
