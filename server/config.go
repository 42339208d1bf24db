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
	"fmt"
	"runtime"

	"github.com/go-playground/validator/v10"

	liberr "github.com/nabbar/golib/errors"
	"github.com/shirou/gopsutil/cpu"
)

const (
	// DefaultKeepAliveTimeout is the keep-alive expiry in worker idle ticks.
	DefaultKeepAliveTimeout = 15

	// DefaultListen binds every interface on the usual development port.
	DefaultListen = "0.0.0.0:8080"
)

// Config carries the startup parameters of the server.
type Config struct {
	// Name identifies the server instance in log entries.
	Name string `mapstructure:"name" json:"name" yaml:"name" toml:"name"`

	// Listen is the host:port the listening socket binds. Port 0 picks an
	// ephemeral port.
	Listen string `mapstructure:"listen" json:"listen" yaml:"listen" toml:"listen" validate:"required,hostname_port"`

	// KeepAliveTimeout is the number of idle ticks after which an inactive
	// connection is reaped.
	KeepAliveTimeout uint64 `mapstructure:"keep_alive_timeout" json:"keep_alive_timeout" yaml:"keep_alive_timeout" toml:"keep_alive_timeout" validate:"gte=1"`

	// Workers is the number of event-loop workers. Zero means one per CPU.
	Workers int `mapstructure:"workers" json:"workers" yaml:"workers" toml:"workers" validate:"gte=0"`

	// WatchDir, when set, is registered on the directory-watch source at
	// startup.
	WatchDir string `mapstructure:"watch_dir" json:"watch_dir" yaml:"watch_dir" toml:"watch_dir"`
}

// NewConfig returns a Config with usable defaults.
func NewConfig() Config {
	return Config{
		Listen:           DefaultListen,
		KeepAliveTimeout: DefaultKeepAliveTimeout,
	}
}

// Validate checks the config constraints and folds every violation into one
// coded error.
func (c Config) Validate() liberr.Error {
	err := validator.New().Struct(c)

	if err == nil {
		return nil
	}

	if e, ok := err.(*validator.InvalidValidationError); ok {
		return ErrorConfigValidate.ErrorParent(e)
	}

	out := ErrorConfigValidate.Error(nil)

	for _, e := range err.(validator.ValidationErrors) {
		//nolint goerr113
		out.AddParent(fmt.Errorf("config field '%s' is not validated by constraint '%s'", e.Field(), e.ActualTag()))
	}

	if out.HasParent() {
		return out
	}

	return nil
}

// GetWorkers resolves the worker count, asking the host for its logical CPU
// count when the config leaves it to zero.
func (c Config) GetWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}

	if n, e := cpu.Counts(true); e == nil && n > 0 {
		return n
	}

	if n := runtime.NumCPU(); n > 0 {
		return n
	}

	return 2
}
