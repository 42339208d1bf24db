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

// urlmap_test.go validates route resolution at load time: handler init,
// default parse flags and the teardown walk.
package handler_test

import (
	"errors"

	libhdl "github.com/X4/lwan/handler"
	"github.com/X4/lwan/protocol"
	"github.com/X4/lwan/request"
	librtr "github.com/X4/lwan/router"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingHandler struct {
	initArgs interface{}
	initErr  error
	downData []interface{}
}

func (o *recordingHandler) Init(args interface{}) (interface{}, error) {
	o.initArgs = args
	return "route-state", o.initErr
}

func (o *recordingHandler) Handle(req *request.Request, rsp *request.Response, data interface{}) protocol.Status {
	return protocol.StatusOK
}

func (o *recordingHandler) Shutdown(data interface{}) {
	o.downData = append(o.downData, data)
}

func (o *recordingHandler) Flags() libhdl.ParseFlag {
	return libhdl.ParseQueryString
}

var _ = Describe("URL Map", func() {
	It("should resolve prefix length, state and flags at load", func() {
		h := &recordingHandler{}
		m := libhdl.URLMap{
			&libhdl.Route{Prefix: "/api", Handler: h, Args: "init-args"},
		}

		t := librtr.New[*libhdl.Route]()
		Expect(m.Load(t)).To(Succeed())

		Expect(m[0].PrefixLen).To(Equal(4))
		Expect(m[0].Data).To(Equal("route-state"))
		Expect(m[0].Flags).To(Equal(libhdl.ParseQueryString))
		Expect(m[0].Callback).ToNot(BeNil())
		Expect(h.initArgs).To(Equal("init-args"))

		r, ok := t.FindPrefix("/api/users")
		Expect(ok).To(BeTrue())
		Expect(r).To(BeIdenticalTo(m[0]))
	})

	It("should default a route without handler to the full parse mask", func() {
		m := libhdl.URLMap{
			&libhdl.Route{Prefix: "/raw"},
		}

		t := librtr.New[*libhdl.Route]()
		Expect(m.Load(t)).To(Succeed())

		Expect(m[0].Flags).To(Equal(libhdl.ParseMask))
		Expect(m[0].Callback).To(BeNil())
	})

	It("should abort the load on a failing handler init", func() {
		h := &recordingHandler{initErr: errors.New("nope")}
		m := libhdl.URLMap{
			&libhdl.Route{Prefix: "/bad", Handler: h},
		}

		t := librtr.New[*libhdl.Route]()

		err := m.Load(t)
		Expect(err).To(HaveOccurred())
		Expect(err.IsCode(libhdl.ErrorRouteInit)).To(BeTrue())
	})

	It("should hand each route state back at shutdown", func() {
		h := &recordingHandler{}
		m := libhdl.URLMap{
			&libhdl.Route{Prefix: "/a", Handler: h},
			&libhdl.Route{Prefix: "/b", Handler: h},
		}

		t := librtr.New[*libhdl.Route]()
		Expect(m.Load(t)).To(Succeed())

		m.Shutdown()
		Expect(h.downData).To(Equal([]interface{}{"route-state", "route-state"}))
	})
})
