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

package protocol

import (
	"strings"
)

// MimeTypeDefault is returned when the extension is missing or unknown.
const MimeTypeDefault = "application/octet-stream"

// MimeTypeForFileName maps the extension after the last dot of the given
// file name to a MIME type.
func MimeTypeForFileName(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return MimeTypeDefault
	}

	switch name[i:] {
	case ".css":
		return "text/css"
	case ".htm", ".html":
		return "text/html"
	case ".jpg":
		return "image/jpeg"
	case ".js":
		return "application/javascript"
	case ".png":
		return "image/png"
	case ".txt":
		return "text/plain"
	}

	return MimeTypeDefault
}
