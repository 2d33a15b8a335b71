// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifoq

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrQueueFull indicates Push could not reserve a slot id because write
// has reached the maximum representable index. This is not a transient
// backpressure signal: Push will never succeed again on this queue once
// this is returned.
var ErrQueueFull = errors.New("fifoq: queue full")

// ErrEmpty indicates Pop found nothing claimable. Unlike ErrQueueFull,
// this is a transient, retry-worthy condition: a producer may publish a
// new item a moment later. It is aliased onto [iox.ErrWouldBlock] so
// callers that already branch on would-block semantics elsewhere treat
// an empty Fifo the same way.
var ErrEmpty = iox.ErrWouldBlock

// IsEmpty reports whether err is or wraps ErrEmpty.
func IsEmpty(err error) bool {
	return iox.IsWouldBlock(err)
}

// ErrAllocation wraps a failure to grow the backing storage. The queue is
// left consistent: the old storage and size are unchanged, and the id
// reserved by the failing Push will be picked up by the next resize
// attempt.
var ErrAllocation = errors.New("fifoq: allocation failure")

// ErrPayload indicates a panic occurred while copying or swapping a
// payload value. Push and Pop recover from such panics at the slot
// boundary and return this error instead of leaving the slot stuck
// between states.
var ErrPayload = errors.New("fifoq: payload error")

// IsQueueFull reports whether err is or wraps ErrQueueFull.
func IsQueueFull(err error) bool {
	return errors.Is(err, ErrQueueFull)
}

// IsAllocation reports whether err is or wraps ErrAllocation.
func IsAllocation(err error) bool {
	return errors.Is(err, ErrAllocation)
}

// IsPayload reports whether err is or wraps ErrPayload.
func IsPayload(err error) bool {
	return errors.Is(err, ErrPayload)
}

// wrapAllocation turns a recovered panic (typically from make() on an
// unreasonable size) into an ErrAllocation.
func wrapAllocation(r any) error {
	return fmt.Errorf("%w: %v", ErrAllocation, r)
}

// wrapPayload turns a recovered panic from a payload copy/swap into an
// ErrPayload.
func wrapPayload(r any) error {
	return fmt.Errorf("%w: %v", ErrPayload, r)
}
