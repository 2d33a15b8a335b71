// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifoq

import (
	"math"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// defaultInitialSize is used by New when initialSize <= 0.
const defaultInitialSize = 1024

// Fifo is an unbounded multi-producer multi-consumer FIFO queue.
//
// Producers reserve ids with a fetch-add on write, growing the backing
// array on demand; consumers scan forward from read, claiming ready slots
// with a CAS. A SharedMutex separates the common path (many concurrent
// producers and consumers touching distinct slots under a shared hold)
// from the rare structural path (grow, counter reset, clear) that needs
// storage to itself.
//
// Fifo provides lock-freedom on the push/pop hot path and brief exclusive
// coordination for grow and reset, not wait-free progress bounds, and
// not strict per-key ordering: a slow consumer can finish after a faster
// one that claimed a higher id. See Push and Pop for the exact guarantees.
type Fifo[V any] struct {
	_       pad
	write   atomix.Uint64 // next id a producer will claim
	_       pad
	read    atomix.Uint64 // next id a consumer will attempt
	_       pad
	size    atomix.Uint64 // current length of storage
	_       pad
	lock    SharedMutex // guards storage identity and counter reset
	storage []Slot[V]
}

// New creates a Fifo with the given initial backing size. A non-positive
// initialSize is replaced with 1024, a sane default rather than a
// zero-capacity queue.
func New[V any](initialSize int) (*Fifo[V], error) {
	if initialSize <= 0 {
		initialSize = defaultInitialSize
	}

	f := &Fifo[V]{}
	var allocErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				allocErr = wrapAllocation(r)
			}
		}()
		f.storage = make([]Slot[V], initialSize)
	}()
	if allocErr != nil {
		return nil, allocErr
	}
	f.size.StoreRelaxed(uint64(initialSize))
	return f, nil
}

// Size returns the current length of the backing array. It is not the
// number of enqueued items; that count would require synchronization the
// design deliberately avoids on the hot path.
func (f *Fifo[V]) Size() int {
	return int(f.size.LoadAcquire())
}

// Empty reports whether read == write. This is observably racy under
// concurrent producers: by the time the caller acts on the result, the
// state may have changed. It is informational only.
func (f *Fifo[V]) Empty() bool {
	return f.read.LoadAcquire() == f.write.LoadAcquire()
}

// Push enqueues v at the logical tail.
//
// Push returns ErrQueueFull if write has reached the maximum id (after
// roughly 2^64 successful pushes on a 64-bit system, a permanent,
// non-retryable condition). It returns ErrAllocation if growing the
// backing array fails; the queue is left consistent in that case, and the
// reserved id will be picked up by the next resize attempt.
func (f *Fifo[V]) Push(v V) error {
	if f.write.LoadAcquire() == math.MaxUint64 {
		return ErrQueueFull
	}

	id := f.write.AddAcqRel(1) - 1
	if id == math.MaxUint64 {
		return ErrQueueFull
	}

	if id >= f.size.LoadAcquire() {
		if err := f.resizeStorage(id); err != nil {
			return err
		}
	}

	f.lock.LockShared()
	defer f.lock.UnlockShared()

	slot := &f.storage[id]
	if err := swapIn(slot, v); err != nil {
		// Skip marker: a consumer scanning past this id must not block
		// forever waiting for it to become Ready.
		slot.state.StoreRelease(uint32(Done))
		return err
	}
	return nil
}

// Pop claims and returns one value from the head of the queue.
//
// It returns ErrEmpty when no slot in [read, min(write, size)) is Ready.
// Pop never blocks: the scan is bounded by the number of slots currently
// reachable, and yields at most once per claim before returning.
//
// Claim order across consumers is FIFO by id within a single scan, but
// value-visible order is FIFO per id rather than strictly FIFO across
// concurrent consumers: a consumer that claims id+1 may finish before the
// consumer that claimed id.
func (f *Fifo[V]) Pop() (V, error) {
	var zero V

	f.lock.LockShared()
	defer f.lock.UnlockShared()

	write := f.write.LoadAcquire()
	size := f.size.LoadAcquire()
	limit := write
	if size < limit {
		limit = size
	}
	read := f.read.LoadAcquire()

	sw := spin.Wait{}
	for id := read; id < limit; id++ {
		slot := &f.storage[id]
		if !slot.state.CompareAndSwapAcqRel(uint32(Ready), uint32(Done)) {
			continue
		}

		out, err := swapOut(slot)
		if err != nil {
			// The value could not be extracted; the slot still owes a
			// reclamation to whichever thread is advancing the head, so
			// it stays Done rather than reverting to Ready (which would
			// require a second consumer to rediscover and re-fail it).
			if id == read {
				f.increaseRead(id)
			} else {
				sw.Once()
			}
			return zero, err
		}

		if id == read {
			f.increaseRead(id)
		} else {
			sw.Once()
		}
		return out, nil
	}
	return zero, ErrEmpty
}

// PopAll drains the queue into dst, appending until Pop reports empty.
// It is not atomic: a concurrent producer can add items mid-drain, so
// this is a best-effort snapshot rather than a transactional flush.
func (f *Fifo[V]) PopAll(dst []V) ([]V, error) {
	for {
		v, err := f.Pop()
		if err == nil {
			dst = append(dst, v)
			continue
		}
		if IsEmpty(err) {
			return dst, nil
		}
		return dst, err
	}
}

// Clear discards all pending work and rewinds read/write to 0. Any values
// sitting in Ready slots are abandoned, not drained; see DESIGN.md for
// the rationale carried over from the source's late-draft behavior.
//
// Reusing ids from 0 is only safe if every slot below the old write is
// Uninitialized, the same precondition resetCounters relies on after
// head-advance reclamation. Clear does not get that for free: a slot may
// still be Ready or Done when the queue is cleared mid-flight, so it
// resets every slot in range itself before rewinding the counters.
func (f *Fifo[V]) Clear() {
	f.lock.Exclusive(func() {
		limit := f.write.LoadRelaxed()
		if read := f.read.LoadRelaxed(); read > limit {
			limit = read
		}
		// write can momentarily outrun storage's length while a resize is
		// still in flight; never index past what's actually allocated.
		if size := f.size.LoadRelaxed(); limit > size {
			limit = size
		}
		for id := uint64(0); id < limit; id++ {
			f.storage[id].state.StoreRelaxed(uint32(Uninitialized))
		}
		f.read.StoreRelaxed(0)
		f.write.StoreRelaxed(0)
	})
}

// increaseRead must be called with the shared lock held and id == read.
// It advances read past contiguous Done slots, reclaiming each one to
// Uninitialized, and returns with the shared lock still held, though it
// may transiently drop and reacquire it to run resetCounters.
func (f *Fifo[V]) increaseRead(id uint64) {
	size := f.size.LoadAcquire()
	for id < size {
		slot := &f.storage[id]
		if !slot.state.CompareAndSwapAcqRel(uint32(Done), uint32(Uninitialized)) {
			break
		}
		f.read.AddAcqRel(1)
		id++
	}

	if f.read.LoadAcquire() == f.write.LoadAcquire() {
		f.lock.UnlockShared()
		f.resetCounters()
		f.lock.LockShared()
	}
}

// resetCounters rewinds read and write to 0 under the exclusive lock,
// rechecking read == write after acquiring it in case a producer bumped
// write in the meantime. All slots below the old write are Uninitialized
// by precondition (increaseRead just reclaimed them), so restarting id
// assignment from 0 is safe and keeps storage from growing indefinitely
// in steady state.
func (f *Fifo[V]) resetCounters() {
	f.lock.Exclusive(func() {
		if f.read.LoadRelaxed() != f.write.LoadRelaxed() {
			return
		}
		f.read.StoreRelaxed(0)
		f.write.StoreRelaxed(0)
	})
}

// resizeStorage grows storage until size > id. If another producer is
// already growing it (size <= id but size != id), this yields instead of
// racing a second allocation for the same doubling.
func (f *Fifo[V]) resizeStorage(id uint64) error {
	sw := spin.Wait{}
	for {
		size := f.size.LoadAcquire()
		if size > id {
			return nil
		}
		if size != id {
			sw.Once()
			continue
		}

		var allocErr error
		f.lock.Exclusive(func() {
			if f.size.LoadAcquire() > id {
				return
			}
			newSize := size * 2
			if newSize == 0 {
				newSize = 1
			}
			defer func() {
				if r := recover(); r != nil {
					allocErr = wrapAllocation(r)
				}
			}()
			grown := make([]Slot[V], newSize)
			copy(grown, f.storage)
			// storage must be published before size: a concurrent
			// LoadAcquire of size that observes newSize must also see
			// this assignment, since a plain field write followed by a
			// release store on the same goroutine happens-before any
			// acquire load that synchronizes with that release.
			f.storage = grown
			f.size.StoreRelease(newSize)
		})
		if allocErr != nil {
			return allocErr
		}
	}
}

// swapIn writes v into slot and publishes Ready, recovering from any
// panic raised during the copy. Ordinary Go value types never panic on
// assignment; this exists so a V with user-defined, fallible copy
// semantics (e.g. one that panics deep inside a custom method invoked by
// an interface conversion) cannot strand the slot in Uninitialized.
func swapIn[V any](slot *Slot[V], v V) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = wrapPayload(r)
		}
	}()
	slot.value = v
	slot.state.StoreRelease(uint32(Ready))
	return nil
}

// swapOut moves slot's value out and clears it, recovering from any panic
// raised during the swap for the same reason as swapIn.
func swapOut[V any](slot *Slot[V]) (out V, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = wrapPayload(r)
		}
	}()
	var zero V
	out = slot.value
	slot.value = zero
	return out, nil
}
