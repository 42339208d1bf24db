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

package router

type node[V any] struct {
	sub map[byte]*node[V]
	val V
	set bool
}

type trie[V any] struct {
	root *node[V]
	size int
}

func (t *trie[V]) Add(prefix string, val V) {
	n := t.root

	for i := 0; i < len(prefix); i++ {
		if n.sub == nil {
			n.sub = make(map[byte]*node[V])
		}

		c := n.sub[prefix[i]]
		if c == nil {
			c = &node[V]{}
			n.sub[prefix[i]] = c
		}

		n = c
	}

	if !n.set {
		t.size++
	}

	n.val = val
	n.set = true
}

func (t *trie[V]) Get(prefix string) (V, bool) {
	n := t.root

	for i := 0; i < len(prefix); i++ {
		if n.sub == nil {
			n = nil
			break
		}

		if n = n.sub[prefix[i]]; n == nil {
			break
		}
	}

	if n != nil && n.set {
		return n.val, true
	}

	var none V
	return none, false
}

func (t *trie[V]) FindPrefix(key string) (V, bool) {
	var (
		n     = t.root
		best  V
		found bool
	)

	// longest match wins: keep the best-so-far while walking down.
	for i := 0; n != nil; i++ {
		if n.set {
			best, found = n.val, true
		}

		if i >= len(key) || n.sub == nil {
			break
		}

		n = n.sub[key[i]]
	}

	return best, found
}

func (t *trie[V]) Len() int {
	return t.size
}

func (t *trie[V]) Walk(fct FuncWalk[V]) bool {
	return t.root.walk("", fct)
}

func (n *node[V]) walk(prefix string, fct FuncWalk[V]) bool {
	if n.set {
		if !fct(prefix, n.val) {
			return false
		}
	}

	for b, c := range n.sub {
		if !c.walk(prefix+string(b), fct) {
			return false
		}
	}

	return true
}
