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

// FuncHash computes the bucket hash of a key.
type FuncHash[K comparable] func(key K) uint32

// FuncCompare orders two keys. It must return a negative value when a sorts
// before b, zero when equal, positive otherwise.
type FuncCompare[K comparable] func(a, b K) int

// FuncFree releases a key or a value owned by the map. Entries are plain
// references unless a FuncFree is configured at construction time.
type FuncFree[T any] func(item T)

// FuncWalk is called for each entry during iteration. Returning false stops
// the walk.
type FuncWalk[K comparable, V any] func(key K, val V) bool

// Hash is a bucketed map whose buckets are dynamic arrays kept in key-sorted
// order. Lookup is a binary search within one bucket; bucket capacity grows
// and shrinks in fixed steps so allocation churn stays bounded.
//
// A Hash is not safe for concurrent use.
type Hash[K comparable, V any] interface {
	// Add inserts the given key/value pair, preserving the bucket sort order.
	// If the key is already present the value is replaced: the old value is
	// released when the map owns its values, and Count is left unchanged.
	Add(key K, val V)

	// AddUnique behaves like Add but fails with ErrorKeyExists when the key
	// is already present. The existing pair is left untouched.
	AddUnique(key K, val V) liberr.Error

	// Get returns the value stored for the given key, or false when the key
	// is absent.
	Get(key K) (V, bool)

	// Del removes the pair stored for the given key, releasing key and value
	// when the map owns them. It fails with ErrorKeyNotFound when the key is
	// absent. The bucket is shrunk when its usage drops more than one step
	// below its allocation.
	Del(key K) liberr.Error

	// Count returns the number of pairs currently stored.
	Count() uint64

	// Walk iterates over all pairs, bucket by bucket, calling the given
	// function for each one. It returns false if the function stopped the
	// iteration.
	Walk(fct FuncWalk[K, V]) bool
}

// New returns a Hash with the given bucket count, hash and compare
// functions. Keys and values are stored as non-owning references.
func New[K comparable, V any](nBuckets uint32, hsh FuncHash[K], cmp FuncCompare[K]) Hash[K, V] {
	return NewOwned[K, V](nBuckets, hsh, cmp, nil, nil)
}

// NewOwned returns a Hash owning its keys and values: the given release
// functions are called whenever a pair is replaced, removed or both. Either
// function may be nil.
func NewOwned[K comparable, V any](nBuckets uint32, hsh FuncHash[K], cmp FuncCompare[K], freeKey FuncFree[K], freeValue FuncFree[V]) Hash[K, V] {
	if nBuckets < 1 {
		nBuckets = defaultBuckets
	}

	return &hsm[K, V]{
		bck: make([]bucket[K, V], nBuckets),
		stp: bucketStep(nBuckets),
		hsh: hsh,
		cmp: cmp,
		frk: freeKey,
		frv: freeValue,
	}
}

// NewString returns a Hash keyed by string, hashed with the Hsieh
// "SuperFastHash" function and ordered lexicographically.
func NewString[V any](nBuckets uint32) Hash[string, V] {
	return New[string, V](nBuckets, HashString, CompareString)
}

// NewInt returns a Hash keyed by int, hashed with a Wang integer mix.
func NewInt[V any](nBuckets uint32) Hash[int, V] {
	return New[int, V](nBuckets, HashInt, CompareInt)
}
