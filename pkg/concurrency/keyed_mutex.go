// Package concurrency 동시성 제어 유틸리티를 제공합니다.
package concurrency

import "sync"

// KeyedMutex 키마다 독립적인 뮤텍스를 제공합니다.
// 서로 다른 키는 동시에 잠글 수 있고, 같은 키에 대한 임계 구역은 직렬화됩니다.
// 더 이상 대기자가 없는 키의 엔트리는 즉시 제거되므로 키가 늘어나도 메모리가 누적되지 않습니다.
type KeyedMutex[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*keyedEntry
}

type keyedEntry struct {
	mu       sync.Mutex
	refCount int
}

// NewKeyedMutex 새로운 KeyedMutex를 생성합니다.
func NewKeyedMutex[K comparable]() *KeyedMutex[K] {
	return &KeyedMutex[K]{locks: make(map[K]*keyedEntry)}
}

// Lock 키에 대한 잠금을 획득하고, 잠금을 해제하는 함수를 반환합니다.
//
//	unlock := km.Lock(appID)
//	defer unlock()
func (km *KeyedMutex[K]) Lock(key K) (unlock func()) {
	km.mu.Lock()
	e, ok := km.locks[key]
	if !ok {
		e = &keyedEntry{}
		km.locks[key] = e
	}
	e.refCount++
	km.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() { km.unlock(key, e) })
	}
}

func (km *KeyedMutex[K]) unlock(key K, e *keyedEntry) {
	km.mu.Lock()
	defer km.mu.Unlock()

	e.mu.Unlock()
	e.refCount--
	if e.refCount == 0 {
		delete(km.locks, key)
	}
}

// Len 현재 잠겨 있거나 대기 중인 키의 개수를 반환합니다.
func (km *KeyedMutex[K]) Len() int {
	km.mu.Lock()
	defer km.mu.Unlock()
	return len(km.locks)
}
