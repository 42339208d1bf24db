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

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"

	libsrv "github.com/X4/lwan/server"
)

var (
	cfgFile string
	flgLst  string
	flgKat  uint64
	flgWks  int
	flgWdr  string
)

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "lwan",
		Short: "epoll driven http server",
		Long:  "lwan accepts tcp clients on a single acceptor loop and drives each connection through a cooperative coroutine on a per-cpu event-loop worker.",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches /etc/lwan, $HOME/.lwan, .)")

	srv := &cobra.Command{
		Use:   "serve",
		Short: "start the server",
		RunE:  runServe,
	}

	srv.Flags().StringVar(&flgLst, "listen", "", "listen address host:port")
	srv.Flags().Uint64Var(&flgKat, "keep-alive-timeout", 0, "keep alive timeout in idle ticks")
	srv.Flags().IntVar(&flgWks, "workers", 0, "event loop workers (0 = one per cpu)")
	srv.Flags().StringVar(&flgWdr, "watch-dir", "", "directory registered on the watch source")

	root.AddCommand(srv)

	return root
}

func loadConfig(log liblog.Logger) (libsrv.Config, error) {
	cfg := libsrv.NewConfig()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("lwan")
		viper.AddConfigPath("/etc/lwan")
		viper.AddConfigPath("$HOME/.lwan")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("lwan")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Entry(loglvl.InfoLevel, "config file loaded").FieldAdd("file", viper.ConfigFileUsed()).Log()

		viper.OnConfigChange(func(e fsnotify.Event) {
			log.Entry(loglvl.InfoLevel, "config file changed, restart to apply").FieldAdd("file", e.Name).FieldAdd("op", e.Op.String()).Log()
		})
		viper.WatchConfig()
	}

	if err := viper.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return cfg, err
	}

	if flgLst != "" {
		cfg.Listen = flgLst
	}
	if flgKat > 0 {
		cfg.KeepAliveTimeout = flgKat
	}
	if flgWks > 0 {
		cfg.Workers = flgWks
	}
	if flgWdr != "" {
		cfg.WatchDir = flgWdr
	}

	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cnl := context.WithCancel(cmd.Context())
	defer cnl()

	log := liblog.New(ctx)
	log.SetLevel(loglvl.InfoLevel)

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	srv, e := libsrv.New(cfg, func() liblog.Logger {
		return log
	})
	if e != nil {
		return e
	}

	if e = srv.SetURLMap(demoURLMap()); e != nil {
		return e
	}

	// broken pipes surface as write errors on the offending slot
	signal.Ignore(syscall.SIGPIPE)

	if err = srv.Start(ctx); err != nil {
		return err
	}

	log.Entry(loglvl.InfoLevel, "serving").FieldAdd("addr", srv.Addr()).Log()
	srv.WaitNotify(ctx)

	return nil
}
