// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifoq

import "code.hybscloud.com/atomix"

// Ref is an atomically refcounted box around a value, for callers that
// want explicit shared-ownership semantics on a payload passed through a
// Fifo, the Go analogue of the original source's reference-counted
// closures. The garbage collector makes this optional rather than
// load-bearing: a Ref left unreleased is simply collected once no Fifo
// slot and no goroutine holds it anymore, unlike the refcounted pointers
// the note in spec.md's design notes was describing.
type Ref[V any] struct {
	value V
	count atomix.Int32
}

// NewRef creates a Ref with one outstanding reference.
func NewRef[V any](v V) *Ref[V] {
	r := &Ref[V]{value: v}
	r.count.StoreRelaxed(1)
	return r
}

// Acquire adds one reference and returns r, for chaining at a hand-off
// point (e.g. before enqueueing the same Ref into a second Fifo).
func (r *Ref[V]) Acquire() *Ref[V] {
	r.count.AddAcqRel(1)
	return r
}

// Release drops one reference and reports whether this was the last one.
// There is no destructor to run on the last release; callers that need
// cleanup should check the return value themselves.
func (r *Ref[V]) Release() bool {
	return r.count.AddAcqRel(-1) == 0
}

// Get returns the boxed value.
func (r *Ref[V]) Get() V {
	return r.value
}
