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

package coroutine

import (
	"errors"
	"sync"
)

// ErrFreed unwinds the task goroutine when the coroutine is freed while
// suspended. Task code that recovers panics for its own purposes must
// re-panic on it.
var ErrFreed = errors.New("coroutine freed")

type coro struct {
	rsm chan struct{} // owner -> task: run
	yld chan struct{} // task -> owner: yielded
	end chan struct{} // closed when the task goroutine is gone
	kil chan struct{} // closed by Free
	onc sync.Once
}

func (c *coro) run(fct Routine) {
	defer close(c.end)

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && errors.Is(e, ErrFreed) {
				return
			}
			panic(r)
		}
	}()

	c.waitResume()
	fct(c)
}

func (c *coro) waitResume() {
	select {
	case <-c.rsm:
	case <-c.kil:
		panic(ErrFreed)
	}
}

func (c *coro) Resume() bool {
	select {
	case c.rsm <- struct{}{}:
	case <-c.end:
		return false
	}

	select {
	case <-c.yld:
		return true
	case <-c.end:
		return false
	}
}

func (c *coro) Yield() {
	select {
	case c.yld <- struct{}{}:
	case <-c.kil:
		panic(ErrFreed)
	}

	c.waitResume()
}

func (c *coro) Free() {
	c.onc.Do(func() {
		close(c.kil)
	})

	// the task either unwinds on the kill channel or was never started;
	// wait until its goroutine is gone so Free never leaks.
	<-c.end
}
