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

package hashmap

import (
	liberr "github.com/nabbar/golib/errors"
)

const (
	defaultBuckets = 512

	stepMin = 4
	stepMax = 64
)

// bucketStep bounds per-bucket capacity steps to max(4, min(64, n/32)).
func bucketStep(nBuckets uint32) uint32 {
	s := nBuckets / 32

	if s < stepMin {
		return stepMin
	} else if s > stepMax {
		return stepMax
	}

	return s
}

type entry[K comparable, V any] struct {
	key K
	val V
}

// bucket usage is len(ent), allocation is cap(ent).
type bucket[K comparable, V any] struct {
	ent []entry[K, V]
}

type hsm[K comparable, V any] struct {
	cnt uint64
	stp uint32
	bck []bucket[K, V]
	hsh FuncHash[K]
	cmp FuncCompare[K]
	frk FuncFree[K]
	frv FuncFree[V]
}

func (h *hsm[K, V]) bucketOf(key K) *bucket[K, V] {
	return &h.bck[h.hsh(key)%uint32(len(h.bck))]
}

func (b *bucket[K, V]) grow(step uint32) {
	if len(b.ent)+1 < cap(b.ent) {
		return
	}

	n := make([]entry[K, V], len(b.ent), cap(b.ent)+int(step))
	copy(n, b.ent)
	b.ent = n
}

// insertAt opens a slot at position i, shifting the tail up. The caller must
// have grown the bucket first.
func (b *bucket[K, V]) insertAt(i int, e entry[K, V]) {
	b.ent = append(b.ent, entry[K, V]{})
	copy(b.ent[i+1:], b.ent[i:])
	b.ent[i] = e
}

func (h *hsm[K, V]) Add(key K, val V) {
	var b = h.bucketOf(key)

	b.grow(h.stp)

	for i := range b.ent {
		c := h.cmp(key, b.ent[i].key)

		if c == 0 {
			if h.frv != nil {
				h.frv(b.ent[i].val)
			}
			b.ent[i].val = val
			return
		} else if c < 0 {
			b.insertAt(i, entry[K, V]{key: key, val: val})
			h.cnt++
			return
		}
	}

	b.ent = append(b.ent, entry[K, V]{key: key, val: val})
	h.cnt++
}

func (h *hsm[K, V]) AddUnique(key K, val V) liberr.Error {
	var b = h.bucketOf(key)

	b.grow(h.stp)

	for i := range b.ent {
		c := h.cmp(key, b.ent[i].key)

		if c == 0 {
			return ErrorKeyExists.Error(nil)
		} else if c < 0 {
			b.insertAt(i, entry[K, V]{key: key, val: val})
			h.cnt++
			return nil
		}
	}

	b.ent = append(b.ent, entry[K, V]{key: key, val: val})
	h.cnt++

	return nil
}

// findIdx binary-searches one bucket. Returns the entry index or -1.
func (h *hsm[K, V]) findIdx(b *bucket[K, V], key K) int {
	var (
		lo = 0
		hi = len(b.ent)
	)

	for lo < hi {
		i := (lo + hi) / 2
		c := h.cmp(key, b.ent[i].key)

		if c == 0 {
			return i
		} else if c > 0 {
			lo = i + 1
		} else {
			hi = i
		}
	}

	return -1
}

func (h *hsm[K, V]) Get(key K) (V, bool) {
	var b = h.bucketOf(key)

	if i := h.findIdx(b, key); i >= 0 {
		return b.ent[i].val, true
	}

	var none V
	return none, false
}

func (h *hsm[K, V]) Del(key K) liberr.Error {
	var (
		b = h.bucketOf(key)
		i = h.findIdx(b, key)
	)

	if i < 0 {
		return ErrorKeyNotFound.Error(nil)
	}

	if h.frv != nil {
		h.frv(b.ent[i].val)
	}
	if h.frk != nil {
		h.frk(b.ent[i].key)
	}

	copy(b.ent[i:], b.ent[i+1:])
	b.ent = b.ent[:len(b.ent)-1]
	h.cnt--

	stepsUsed := uint32(len(b.ent)) / h.stp
	stepsTotal := uint32(cap(b.ent)) / h.stp

	if stepsUsed+1 < stepsTotal {
		n := make([]entry[K, V], len(b.ent), (stepsUsed+1)*h.stp)
		copy(n, b.ent)
		b.ent = n
	}

	return nil
}

func (h *hsm[K, V]) Count() uint64 {
	return h.cnt
}

func (h *hsm[K, V]) Walk(fct FuncWalk[K, V]) bool {
	for i := range h.bck {
		for j := range h.bck[i].ent {
			if !fct(h.bck[i].ent[j].key, h.bck[i].ent[j].val) {
				return false
			}
		}
	}

	return true
}
