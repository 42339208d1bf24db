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
	"strings"
)

// HashString is Paul Hsieh's SuperFastHash over the bytes of the string.
func HashString(key string) uint32 {
	var (
		l = len(key)
		h = uint32(l)
		t uint32
		r = l & 3
		i int
	)

	ld := func(p int) uint32 {
		return uint32(key[p]) | uint32(key[p+1])<<8
	}

	for n := l / 4; n > 0; n-- {
		h += ld(i)
		t = (ld(i+2) << 11) ^ h
		h = (h << 16) ^ t
		i += 4
		h += h >> 11
	}

	switch r {
	case 3:
		h += ld(i)
		h ^= h << 16
		h ^= uint32(key[i+2]) << 18
		h += h >> 11
	case 2:
		h += ld(i)
		h ^= h << 11
		h += h >> 17
	case 1:
		h += uint32(key[i])
		h ^= h << 10
		h += h >> 1
	}

	h ^= h << 3
	h += h >> 5
	h ^= h << 4
	h += h >> 17
	h ^= h << 25
	h += h >> 6

	return h
}

// HashInt is a Wang-style integer mix.
func HashInt(key int) uint32 {
	k := uint32(key)

	k = (k ^ 61) ^ (k >> 16)
	k += k << 3
	k ^= k >> 4
	k *= 0x27d4eb2d
	k ^= k >> 15

	return k
}

func CompareString(a, b string) int {
	return strings.Compare(a, b)
}

func CompareInt(a, b int) int {
	return a - b
}
