package services

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// keyMutex serializes operations per logical key without a global lock.
// Keys hash onto a fixed set of stripes: calls on the same key always
// contend, calls on different keys almost never do. The stripe must be held
// across the read-check-then-write sequence of a toggle or membership
// transition so two concurrent calls on one key cannot both observe "no
// record" and both write.
type keyMutex struct {
	stripes [lockStripes]sync.Mutex
}

func (k *keyMutex) stripe(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &k.stripes[h.Sum32()%lockStripes]
}
