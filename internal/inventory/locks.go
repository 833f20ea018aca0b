package inventory

import (
	"sort"
	"sync"
)

// keyLocks serializes writers per product id inside one process.
type keyLocks struct {
	mu sync.Mutex
	m  map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// lock acquires every id in sorted order so overlapping orders cannot deadlock.
func (k *keyLocks) lock(ids ...string) (unlock func()) {
	keys := sortedUnique(ids)
	held := make([]*keyLock, 0, len(keys))
	for _, key := range keys {
		k.mu.Lock()
		if k.m == nil {
			k.m = make(map[string]*keyLock)
		}
		l, ok := k.m[key]
		if !ok {
			l = &keyLock{}
			k.m[key] = l
		}
		l.refs++
		k.mu.Unlock()

		l.mu.Lock()
		held = append(held, l)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			l := held[i]
			l.mu.Unlock()
			k.mu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(k.m, keys[i])
			}
			k.mu.Unlock()
		}
	}
}

func sortedUnique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
