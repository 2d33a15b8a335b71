// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifoq

// Task is the capability abstraction for a Fifo used as a job queue. It
// replaces the boxed-callable payload pattern of the original source's
// job_list/multibin drafts: instead of storing an opaque closure, Fifo[Task]
// stores anything that knows how to run itself.
type Task interface {
	Run()
}

// FuncTask adapts a plain func() into a Task.
type FuncTask func()

// Run invokes f.
func (f FuncTask) Run() { f() }
