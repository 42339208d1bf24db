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

// Package router provides the prefix trie used as the server's URL dispatch
// table. The trie maps URL prefixes to arbitrary entries; lookup walks the
// request path one byte at a time and returns the entry with the longest
// matching prefix. The trie is loaded once at server init and is read-only
// afterwards, so it can be shared between workers without locking.
package router

// FuncWalk is called for each stored prefix during iteration. Returning
// false stops the walk.
type FuncWalk[V any] func(prefix string, val V) bool

// Trie is a byte-wise prefix trie.
//
// A Trie is safe for concurrent lookup once loading is done; Add must not
// run concurrently with anything else.
type Trie[V any] interface {
	// Add stores the given value under the given prefix, replacing any value
	// already stored for the exact same prefix.
	Add(prefix string, val V)

	// Get returns the value stored for exactly the given prefix.
	Get(prefix string) (V, bool)

	// FindPrefix walks the given key and returns the value whose prefix is
	// the longest match, or false when no stored prefix matches.
	FindPrefix(key string) (V, bool)

	// Len returns the number of stored prefixes.
	Len() int

	// Walk iterates over all stored prefixes in depth-first order. It
	// returns false if the function stopped the iteration.
	Walk(fct FuncWalk[V]) bool
}

// New returns an empty Trie.
func New[V any]() Trie[V] {
	return &trie[V]{
		root: &node[V]{},
	}
}
