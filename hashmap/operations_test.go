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

// operations_test.go validates the map contract: add/replace semantics,
// unique insertion, deletion, counting and iteration.
package hashmap_test

import (
	"fmt"

	libhsh "github.com/X4/lwan/hashmap"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("HashMap Operations", func() {
	var h libhsh.Hash[string, string]

	BeforeEach(func() {
		h = libhsh.NewString[string](64)
	})

	Context("adding entries", func() {
		It("should store and find a pair", func() {
			h.Add("key", "value")

			v, ok := h.Get("key")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("value"))
			Expect(h.Count()).To(Equal(uint64(1)))
		})

		It("should replace the value on duplicate add without changing the count", func() {
			h.Add("key", "first")
			h.Add("key", "second")

			v, ok := h.Get("key")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("second"))
			Expect(h.Count()).To(Equal(uint64(1)))
		})

		It("should refuse a duplicate key on AddUnique and keep the first value", func() {
			Expect(h.AddUnique("key", "first")).To(Succeed())

			err := h.AddUnique("key", "second")
			Expect(err).To(HaveOccurred())
			Expect(err.IsCode(libhsh.ErrorKeyExists)).To(BeTrue())

			v, ok := h.Get("key")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("first"))
			Expect(h.Count()).To(Equal(uint64(1)))
		})
	})

	Context("deleting entries", func() {
		It("should remove a stored pair and decrement the count", func() {
			h.Add("key", "value")
			h.Add("other", "kept")

			Expect(h.Del("key")).To(Succeed())

			_, ok := h.Get("key")
			Expect(ok).To(BeFalse())
			Expect(h.Count()).To(Equal(uint64(1)))

			v, ok := h.Get("other")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("kept"))
		})

		It("should fail on an absent key", func() {
			err := h.Del("missing")
			Expect(err).To(HaveOccurred())
			Expect(err.IsCode(libhsh.ErrorKeyNotFound)).To(BeTrue())
		})
	})

	Context("iterating entries", func() {
		It("should visit every pair exactly once", func() {
			for i := 0; i < 100; i++ {
				h.Add(fmt.Sprintf("key-%03d", i), fmt.Sprintf("val-%03d", i))
			}

			seen := make(map[string]string)
			full := h.Walk(func(k, v string) bool {
				seen[k] = v
				return true
			})

			Expect(full).To(BeTrue())
			Expect(seen).To(HaveLen(100))
			Expect(seen["key-042"]).To(Equal("val-042"))
		})

		It("should stop when the walk function returns false", func() {
			for i := 0; i < 10; i++ {
				h.Add(fmt.Sprintf("key-%d", i), "v")
			}

			var cnt int
			full := h.Walk(func(k, v string) bool {
				cnt++
				return cnt < 3
			})

			Expect(full).To(BeFalse())
			Expect(cnt).To(Equal(3))
		})
	})

	Context("owned entries", func() {
		It("should release replaced and deleted values", func() {
			var freed []string

			o := libhsh.NewOwned[string, string](16, libhsh.HashString, libhsh.CompareString, nil, func(v string) {
				freed = append(freed, v)
			})

			o.Add("key", "first")
			o.Add("key", "second")
			Expect(freed).To(Equal([]string{"first"}))

			Expect(o.Del("key")).To(Succeed())
			Expect(freed).To(Equal([]string{"first", "second"}))
		})
	})

	Context("integer keys", func() {
		It("should store integer keys and walk their values", func() {
			n := libhsh.NewInt[int](8)

			for i := 99; i >= 0; i-- {
				n.Add(i, i * 2)
			}

			Expect(n.Count()).To(Equal(uint64(100)))

			var keys []int
			n.Walk(func(k, v int) bool {
				Expect(v).To(Equal(k * 2))
				keys = append(keys, k)
				return true
			})

			Expect(keys).To(HaveLen(100))
		})
	})
})
