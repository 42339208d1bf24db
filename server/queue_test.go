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

// queue_test.go validates the expiry queue invariants: FIFO order, the
// population arithmetic and index wrap-around.
package server

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func checkQueue(q *deathQueue) {
	Expect(q.Population()).To(Equal(((q.last - q.first) + q.Capacity()) % q.Capacity()))
	Expect(q.Population()).To(BeNumerically("<=", q.Capacity()))
}

var _ = Describe("Expiry Queue", func() {
	It("should pop fds in append order", func() {
		q := newDeathQueue(8)

		q.Push(5)
		q.Push(7)
		q.Push(3)

		Expect(q.Population()).To(Equal(3))
		Expect(q.Peek()).To(Equal(5))

		q.Pop()
		Expect(q.Peek()).To(Equal(7))

		q.Pop()
		Expect(q.Peek()).To(Equal(3))

		q.Pop()
		Expect(q.Population()).To(BeZero())
	})

	It("should keep the population arithmetic consistent", func() {
		q := newDeathQueue(4)

		for i := 0; i < 3; i++ {
			q.Push(i)
			checkQueue(q)
		}

		q.Pop()
		checkQueue(q)

		q.Push(9)
		checkQueue(q)
	})

	It("should wrap the append index at capacity", func() {
		q := newDeathQueue(4)

		// drift the indices to the end of the ring
		for i := 0; i < 3; i++ {
			q.Push(i)
			q.Pop()
		}

		q.Push(40)
		Expect(q.last).To(BeZero(), "append at capacity-1 wraps the next append to 0")

		q.Push(41)
		Expect(q.Peek()).To(Equal(40))

		q.Pop()
		Expect(q.Peek()).To(Equal(41))
	})
})
