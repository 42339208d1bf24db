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

// coroutine_test.go validates the resume/yield protocol: serialized
// execution, the wants-resume return value, and teardown through Free.
package coroutine_test

import (
	libcor "github.com/X4/lwan/coroutine"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Coroutine", func() {
	Context("resume and yield", func() {
		It("should not run before the first resume", func() {
			var ran bool

			co := libcor.New(func(c libcor.Coro) {
				ran = true
			})

			Expect(ran).To(BeFalse())

			Expect(co.Resume()).To(BeFalse())
			Expect(ran).To(BeTrue())
		})

		It("should report pending work while the task yields", func() {
			var steps []int

			co := libcor.New(func(c libcor.Coro) {
				steps = append(steps, 1)
				c.Yield()
				steps = append(steps, 2)
				c.Yield()
				steps = append(steps, 3)
			})

			Expect(co.Resume()).To(BeTrue())
			Expect(steps).To(Equal([]int{1}))

			Expect(co.Resume()).To(BeTrue())
			Expect(steps).To(Equal([]int{1, 2}))

			Expect(co.Resume()).To(BeFalse())
			Expect(steps).To(Equal([]int{1, 2, 3}))
		})

		It("should keep returning false once the task has finished", func() {
			co := libcor.New(func(c libcor.Coro) {})

			Expect(co.Resume()).To(BeFalse())
			Expect(co.Resume()).To(BeFalse())
		})

		It("should never overlap owner and task execution", func() {
			var inTask bool

			co := libcor.New(func(c libcor.Coro) {
				inTask = true
				c.Yield()
				inTask = false
			})

			Expect(co.Resume()).To(BeTrue())
			// the task is suspended: its last write is visible and stable
			Expect(inTask).To(BeTrue())

			Expect(co.Resume()).To(BeFalse())
			Expect(inTask).To(BeFalse())
		})
	})

	Context("freeing", func() {
		It("should release a never-resumed task", func() {
			co := libcor.New(func(c libcor.Coro) {
				Fail("task must not run")
			})

			co.Free()
			Expect(co.Resume()).To(BeFalse())
		})

		It("should release a suspended task without running it further", func() {
			var after bool

			co := libcor.New(func(c libcor.Coro) {
				c.Yield()
				after = true
			})

			Expect(co.Resume()).To(BeTrue())

			co.Free()
			Expect(after).To(BeFalse())
			Expect(co.Resume()).To(BeFalse())
		})

		It("should tolerate a double free", func() {
			co := libcor.New(func(c libcor.Coro) {})

			Expect(co.Resume()).To(BeFalse())
			co.Free()
			co.Free()
		})
	})
})
