// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifoq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// exclBit is the high bit of the SharedMutex word. When set, a writer
// either holds or is acquiring the exclusive lock; the remaining bits
// count concurrent shared holders.
const exclBit = uint64(1) << 63

// SharedMutex is a shared/exclusive lock packed into a single atomic word.
//
// It favors shared holders: LockShared never blocks behind another shared
// holder, only behind an exclusive holder. It is not fair: a continuous
// stream of shared lockers can starve a waiting Lock call. Fifo relies on
// exclusive acquisitions being rare (resize, counter reset, clear), so
// this tradeoff is deliberate rather than an oversight.
type SharedMutex struct {
	_ pad
	w atomix.Uint64
	_ pad
}

// fetchOr atomically ORs bits into w and returns the value w held before
// the OR, via a CAS retry loop (atomix exposes no native FetchOr).
func fetchOr(w *atomix.Uint64, bits uint64) uint64 {
	sw := spin.Wait{}
	for {
		cur := w.LoadAcquire()
		if w.CompareAndSwapAcqRel(cur, cur|bits) {
			return cur
		}
		sw.Once()
	}
}

// fetchAnd atomically ANDs bits into w and returns the value w held before
// the AND, via a CAS retry loop.
func fetchAnd(w *atomix.Uint64, bits uint64) uint64 {
	sw := spin.Wait{}
	for {
		cur := w.LoadAcquire()
		if w.CompareAndSwapAcqRel(cur, cur&bits) {
			return cur
		}
		sw.Once()
	}
}

// LockShared acquires a shared hold. It never observes the exclusive bit
// set on return: if it increments into a writer, it immediately backs out
// and waits for the writer to clear before retrying, so a pending Lock is
// never undercounted by a reader that's mid-retry.
func (m *SharedMutex) LockShared() {
	sw := spin.Wait{}
	for {
		prev := m.w.AddAcqRel(1) - 1
		if prev&exclBit == 0 {
			return
		}
		m.w.AddAcqRel(^uint64(0)) // fetch_sub(1): back out before waiting
		for m.w.LoadAcquire()&exclBit != 0 {
			sw.Once()
		}
	}
}

// UnlockShared releases a shared hold acquired by LockShared.
func (m *SharedMutex) UnlockShared() {
	m.w.AddAcqRel(^uint64(0))
}

// Lock acquires the exclusive lock, spinning first for the exclusive bit
// and then for any shared holders already in flight to drain. New shared
// holders cannot enter once the bit is set; they see it in LockShared and
// back out, so the drain wait is bounded by holders that started before
// this call.
func (m *SharedMutex) Lock() {
	sw := spin.Wait{}
	for fetchOr(&m.w, exclBit)&exclBit != 0 {
		sw.Once()
	}
	sw = spin.Wait{}
	for m.UseCount() != 0 {
		sw.Once()
	}
}

// Unlock releases the exclusive lock.
func (m *SharedMutex) Unlock() {
	fetchAnd(&m.w, ^exclBit)
}

// UseCount returns the number of shared holders. It is only meaningful
// while no exclusive holder is present; Lock uses it to detect drain.
func (m *SharedMutex) UseCount() uint64 {
	return m.w.LoadAcquire() &^ exclBit
}

// Exclusive runs f while holding the exclusive lock, releasing it on every
// exit path, including a panic inside f.
func (m *SharedMutex) Exclusive(f func()) {
	m.Lock()
	defer m.Unlock()
	f()
}
