/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package coroutine implements a single-owner cooperative task on top of a
// parked goroutine.
//
// A coroutine is created suspended and only runs between a call to Resume and
// the task's next Yield or return. The owner and the task never execute at
// the same time: Resume blocks the owner while the task runs, and Yield
// blocks the task until the owner resumes it again. This gives each task a
// full stack of its own while keeping execution strictly serial within the
// owning goroutine, which is how the server drives one connection per task on
// an event-loop worker.
//
// Exactly one goroutine may resume a given coroutine. Yield is the only
// suspension point inside the task.
package coroutine

// Routine is the task body. It runs on its own goroutine and may call
// co.Yield() any number of times before returning.
type Routine func(co Coro)

// Coro is a cooperative task with explicit control transfer.
type Coro interface {
	// Resume switches into the task until its next Yield or return. It
	// returns true when the task yielded and wants another resume, false
	// when the task returned or was freed. Resuming a finished task returns
	// false immediately.
	Resume() bool

	// Yield suspends the task and makes the pending Resume return true. It
	// must only be called from inside the task. When the coroutine is freed
	// while suspended, Yield never returns: the task goroutine is unwound
	// and released.
	Yield()

	// Free releases a suspended task. After Free, Resume returns false.
	// Free must not be called while the task is running, and is idempotent.
	Free()
}

// New creates a suspended coroutine running the given routine on its first
// Resume.
func New(fct Routine) Coro {
	c := &coro{
		rsm: make(chan struct{}),
		yld: make(chan struct{}),
		end: make(chan struct{}),
		kil: make(chan struct{}),
	}

	go c.run(fct)

	return c
}
