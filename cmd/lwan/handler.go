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
	"fmt"

	"github.com/X4/lwan/handler"
	"github.com/X4/lwan/protocol"
	"github.com/X4/lwan/request"
)

func demoURLMap() handler.URLMap {
	return handler.URLMap{
		&handler.Route{
			Prefix:  "/",
			Handler: handler.NewFunc(hello, handler.ParseQueryString),
		},
	}
}

func hello(req *request.Request, rsp *request.Response, data interface{}) protocol.Status {
	name := "world"

	if v, ok := req.QueryGet("name"); ok && v != "" {
		name = v
	}

	rsp.MimeType = "text/plain"
	fmt.Fprintf(rsp.Buffer, "Hello, %s!\n", name)

	return protocol.StatusOK
}
