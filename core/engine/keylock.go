package engine

import (
	"hash/fnv"
	"sync"
)

// keyLock serializes work per string key using a fixed set of mutex
// stripes. Two messages from the same identity always hash to the same
// stripe, so they are handled one at a time; unrelated identities contend
// only on hash collisions.
type keyLock struct {
	stripes [64]sync.Mutex
}

func (l *keyLock) stripe(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &l.stripes[h.Sum32()%uint32(len(l.stripes))]
}

// Lock acquires the stripe for key and returns its unlock function.
func (l *keyLock) Lock(key string) func() {
	mu := l.stripe(key)
	mu.Lock()
	return mu.Unlock
}
