// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifoq

import "code.hybscloud.com/atomix"

// SlotState is the lifecycle tag of a Slot.
type SlotState uint32

const (
	// Uninitialized is the initial state; the slot is free and its value
	// is meaningless. Also the terminal state once a slot is reclaimed.
	Uninitialized SlotState = iota
	// Ready means a producer committed a value and it has not yet been
	// claimed by a consumer.
	Ready
	// Done means a consumer claimed the slot and swapped its value out;
	// it is pending reclamation by the next head-advance pass.
	Done
)

// Slot is one cell of a Fifo's backing array. Its value is valid only
// while state == Ready; ownership of value transfers with the state
// transition, so only the thread that wins the CAS into a state may touch
// value for that state.
//
// Slot does not pad out to its own cache line the way the fixed atomic
// fields elsewhere in this package do: V's size isn't known at a
// compile-time constant width, so padding around it would need
// unsafe.Sizeof(V) computed per instantiation instead.
type Slot[V any] struct {
	state atomix.Uint32
	value V
}
