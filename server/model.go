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

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	libatm "github.com/nabbar/golib/atomic"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	librun "github.com/nabbar/golib/runner/startStop"

	"github.com/X4/lwan/handler"
	"github.com/X4/lwan/process"
	"github.com/X4/lwan/request"
	"github.com/X4/lwan/router"
	"github.com/X4/lwan/watcher"
)

type srv struct {
	m   sync.RWMutex
	cfg Config
	log libatm.Value[liblog.FuncLog]
	run libatm.Value[librun.StartStop]

	msk int // listening socket
	prt int // bound port once started

	tbl *request.Table
	ump handler.URLMap
	rts router.Trie[*handler.Route]
	prc process.Processor
	wts watcher.Watcher

	mfd int // max fds per worker
	wks []*worker
	acc *acceptor
	wgw sync.WaitGroup
	wga sync.WaitGroup
}

func (o *srv) logger() liblog.Logger {
	if f := o.log.Load(); f != nil {
		if l := f(); l != nil {
			return l
		}
	}

	return liblog.New(nil)
}

func (o *srv) funcLog() liblog.FuncLog {
	return func() liblog.Logger {
		return o.logger()
	}
}

func (o *srv) GetConfig() Config {
	return o.cfg
}

// KeepAliveTimeout is lock-free on purpose: the config is immutable after
// construction and this runs on the worker hot path, where taking the server
// mutex would deadlock against a stopping lifecycle.
func (o *srv) KeepAliveTimeout() uint64 {
	return o.cfg.KeepAliveTimeout
}

func (o *srv) Addr() string {
	o.m.RLock()
	defer o.m.RUnlock()

	return fmt.Sprintf("%s:%d", o.listenHost(), o.prt)
}

func (o *srv) Watcher() watcher.Watcher {
	o.m.RLock()
	defer o.m.RUnlock()

	return o.wts
}

func (o *srv) SetURLMap(m handler.URLMap) liberr.Error {
	if len(m) < 1 {
		return ErrorURLMapEmpty.Error(nil)
	}

	o.m.Lock()
	defer o.m.Unlock()

	if o.ump != nil && o.rts != nil {
		// replacing a loaded map tears the old routes down first
		o.ump.Shutdown()
		o.rts = nil
		o.prc = nil
	}

	o.ump = m

	return nil
}

// loadURLMap resolves the stored map into a fresh trie and processor. Called
// under lock at each start so route handlers are initialized once per run.
func (o *srv) loadURLMap() liberr.Error {
	if len(o.ump) < 1 {
		return ErrorURLMapEmpty.Error(nil)
	}

	t := router.New[*handler.Route]()

	if e := o.ump.Load(t); e != nil {
		return e
	}

	o.rts = t
	o.prc = process.New(t, o.funcLog())

	return nil
}

func (o *srv) Start(ctx context.Context) error {
	if r := o.run.Load(); r != nil {
		return r.Start(ctx)
	}

	return ErrorServerStart.Error(nil)
}

func (o *srv) Stop(ctx context.Context) error {
	if r := o.run.Load(); r != nil {
		return r.Stop(ctx)
	}

	return nil
}

func (o *srv) Restart(ctx context.Context) error {
	if r := o.run.Load(); r != nil {
		return r.Restart(ctx)
	}

	return ErrorServerStart.Error(nil)
}

func (o *srv) IsRunning() bool {
	if r := o.run.Load(); r != nil {
		return r.IsRunning()
	}

	return false
}

func (o *srv) WaitNotify(ctx context.Context) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case <-quit:
	case <-ctx.Done():
	}

	_ = o.Stop(ctx)
}
