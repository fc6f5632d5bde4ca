package employee

import "sync"

// keyedMutex は document 単位の排他を提供します。同一キーの reconcile を直列化し、
// 異なるキーは互いにブロックしません。未使用になったエントリは解放されます。
type keyedMutex struct {
	mu   sync.Mutex
	keys map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{keys: make(map[string]*keyLock)}
}

func (m *keyedMutex) lock(key string) func() {
	m.mu.Lock()
	l, ok := m.keys[key]
	if !ok {
		l = &keyLock{}
		m.keys[key] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.keys, key)
		}
		m.mu.Unlock()
	}
}
