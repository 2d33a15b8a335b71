// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fifoq provides an unbounded multi-producer multi-consumer FIFO
// queue, backed by an indexed slot array that grows on overflow.
//
// # Quick Start
//
//	q, err := fifoq.New[int](1024)
//	if err != nil {
//	    // allocation failure
//	}
//
//	if err := q.Push(42); err != nil {
//	    // ErrQueueFull (permanent) or allocation failure
//	}
//
//	v, err := q.Pop()
//	if fifoq.IsEmpty(err) {
//	    // nothing to claim right now
//	}
//
// # Design
//
// Producers reserve an id with a fetch-add on an atomic write counter,
// growing the backing storage on demand (doubling, under a brief
// exclusive lock), then publish their value under a shared lock. Consumers
// take the same shared lock and scan forward from read, claiming the
// first Ready slot they can CAS to Done. When the consumer holding the
// head id catches up, it reclaims contiguous Done slots back to
// Uninitialized and, once read == write, rewinds both counters to 0 so
// the backing array is reused rather than growing indefinitely.
//
// This gives lock-free progress on the push/pop hot path: no producer or
// consumer blocks behind another doing unrelated work. The only exclusive
// coordination is grow, counter reset, and Clear, all rare relative to
// push/pop volume in steady state.
//
// # Ordering
//
// Id assignment is strict FIFO across producers. Claim order across
// consumers is FIFO by id within a single scan pass, but value-visible
// order is FIFO per id rather than strictly FIFO across concurrent
// consumers: a consumer that claims a higher id can finish before a
// slower consumer that claimed a lower one and is still extracting its
// value. Callers needing strict global ordering of delivery, not just of
// claim, should serialize their own downstream processing.
//
// # Non-goals
//
// Fifo is unbounded: there is no backpressure signal short of
// ErrQueueFull, which only fires after exhausting the id space. It does
// not provide per-key ordering, priority scheduling, persistence, or
// cross-process sharing, and it targets lock-freedom in the common path
// rather than strict wait-free progress bounds: a producer can in
// principle spin behind a concurrent grow, and a reader can spin behind a
// concurrent exclusive holder.
//
// # Race Detection
//
// Like the lock-free queues this package is grounded on, Go's race
// detector cannot observe the happens-before relationships established
// purely through atomic acquire/release orderings on separate variables
// (e.g. a slot's value write becoming visible via its state's release
// store). Tests whose correctness depends on that check [RaceEnabled] and
// skip themselves under -race.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomic primitives
// with explicit memory ordering, [code.hybscloud.com/spin] for busy-wait
// backoff at the handful of points the algorithm may spin, and
// [code.hybscloud.com/iox] for the empty-queue semantic error.
package fifoq
