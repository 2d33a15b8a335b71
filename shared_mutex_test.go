// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifoq_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"code.hybscloud.com/fifoq"
	"github.com/zeebo/assert"
)

// TestSharedMutexBasic exercises Lock/Unlock/LockShared/UnlockShared in
// isolation, without concurrency, to pin down the state transitions.
func TestSharedMutexBasic(t *testing.T) {
	var m fifoq.SharedMutex

	assert.Equal(t, m.UseCount(), uint64(0))

	m.LockShared()
	assert.Equal(t, m.UseCount(), uint64(1))
	m.LockShared()
	assert.Equal(t, m.UseCount(), uint64(2))
	m.UnlockShared()
	assert.Equal(t, m.UseCount(), uint64(1))
	m.UnlockShared()
	assert.Equal(t, m.UseCount(), uint64(0))

	ran := false
	m.Exclusive(func() { ran = true })
	assert.That(t, ran)
	assert.Equal(t, m.UseCount(), uint64(0))
}

// TestSharedMutexExclusivePanicSafe checks Unlock still runs when f panics
// inside Exclusive, so a panicking critical section can't leave the lock
// held forever.
func TestSharedMutexExclusivePanicSafe(t *testing.T) {
	var m fifoq.SharedMutex

	func() {
		defer func() { recover() }()
		m.Exclusive(func() { panic("boom") })
	}()

	// If Unlock didn't run on the panic path, this would spin forever.
	done := make(chan struct{})
	go func() {
		m.Lock()
		m.Unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Lock did not return after a panicking Exclusive call")
	}
}

// TestSharedMutexExclusion is spec property 7: no shared holder is ever
// concurrent with an exclusive holder. This does not read UseCount from
// the exclusive side: UseCount reflects the raw word, which also counts
// a reader that incremented in LockShared, observed exclBit set, and is
// already backing out (a transient bump with no actual hold). A separate
// counter is instead incremented only once LockShared has returned (a
// true entry) and decremented before UnlockShared, so the exclusive side
// is checking holds, not the word's transient traffic.
func TestSharedMutexExclusion(t *testing.T) {
	if fifoq.RaceEnabled {
		t.Skip("skip: relies on atomic orderings the race detector can't model")
	}

	var m fifoq.SharedMutex
	var held int32
	const readers = 8
	const rounds = 2000

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for range readers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				m.LockShared()
				atomic.AddInt32(&held, 1)
				atomic.AddInt32(&held, -1)
				m.UnlockShared()
			}
		}()
	}

	var sawConcurrentShared bool
	for range rounds {
		m.Exclusive(func() {
			if atomic.LoadInt32(&held) != 0 {
				sawConcurrentShared = true
			}
		})
	}
	close(stop)
	wg.Wait()

	assert.That(t, !sawConcurrentShared)
}
