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

package server

// deathQueue is a worker-local circular FIFO of fds awaiting timeout reap.
// It is not kept sorted: expiry ticks are updated in place on the slots, so
// the head only approximates the earliest-expiring connection. A connection
// is appended once, on first activation, and popped when its expiry tick has
// elapsed.
type deathQueue struct {
	fds        []int
	first      int
	last       int
	population int
}

func newDeathQueue(capacity int) *deathQueue {
	return &deathQueue{
		fds: make([]int, capacity),
	}
}

func (q *deathQueue) Push(fd int) {
	q.fds[q.last] = fd
	q.last = (q.last + 1) % len(q.fds)
	q.population++
}

// Peek returns the head fd. Only valid while Population is positive.
func (q *deathQueue) Peek() int {
	return q.fds[q.first]
}

func (q *deathQueue) Pop() {
	q.first = (q.first + 1) % len(q.fds)
	q.population--
}

func (q *deathQueue) Population() int {
	return q.population
}

func (q *deathQueue) Capacity() int {
	return len(q.fds)
}
