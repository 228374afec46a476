package syncengine

import (
	"sync"
	"testing"
)

func TestLockRegistry_TryAcquireRelease(t *testing.T) {
	locks := NewLockRegistry()

	if !locks.TryAcquire("conn-1") {
		t.Fatal("First acquire should succeed")
	}
	if locks.TryAcquire("conn-1") {
		t.Error("Second acquire of a held lock should fail")
	}
	if !locks.IsHeld("conn-1") {
		t.Error("Lock should report held")
	}
	if !locks.TryAcquire("conn-2") {
		t.Error("Different connection must not be blocked")
	}

	locks.Release("conn-1")
	if locks.IsHeld("conn-1") {
		t.Error("Released lock should not report held")
	}
	if !locks.TryAcquire("conn-1") {
		t.Error("Acquire after release should succeed")
	}
}

func TestLockRegistry_ConcurrentAcquireGrantsOnce(t *testing.T) {
	locks := NewLockRegistry()

	const attempts = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if locks.TryAcquire("conn-1") {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != 1 {
		t.Errorf("Expected exactly 1 grant, got %d", granted)
	}
}
