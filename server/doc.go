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

// Package server implements the connection-scheduling reactor.
//
// # Architecture
//
// One acceptor goroutine owns the listening socket. Its readiness set also
// watches the directory-watch descriptor and a shutdown eventfd. On every
// wake it drains the listening socket and hands each accepted, non-blocking
// fd to a worker chosen by a monotonically advancing round-robin counter.
//
// One worker per CPU runs an edge-triggered epoll loop over a disjoint
// subset of the fds. Each active connection is driven by a cooperative
// coroutine; coroutine resumes within a worker are strictly serial, so a
// connection never needs a lock. When a coroutine yields wanting another
// resume while the current interest direction disagrees, the worker flips
// the fd's readiness interest between the read and write shapes with a
// single modify operation.
//
// # Expiry
//
// Every worker keeps a circular FIFO of its fds plus a scalar clock
// advanced once per idle tick (a one-second wait timeout that fired with
// no events). A connection is appended to the queue on first activation;
// its expiry tick is rewritten in place on later activity. On each idle
// tick the worker pops and closes every expired head, stopping at the
// first connection still in grace. The queue is not re-sorted, so an idle
// connection is closed after at least — not exactly — the configured
// keep-alive ticks.
//
// # Slots
//
// Per-connection state lives in a dense table indexed by raw fd, sized to
// the (raised, then capped) fd soft limit at start. The slot's response
// buffer is allocated once and reused for every request on the slot; the
// reset discipline between requests preserves fd, coroutine, owner and
// buffer capacity and zeroes everything else.
//
// # Shutdown
//
// Shutdown is abrupt by design: the acceptor and every worker are woken
// through their eventfds and joined, the listening socket is shut down,
// route handlers get their Shutdown call, the watcher is closed, and any
// slot still alive is reaped by the lifecycle. There is no draining of
// in-flight exchanges.
package server
