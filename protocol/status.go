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

// Package protocol holds the HTTP tables recognized by the server core:
// status codes with their reason and descriptive strings, and the MIME type
// mapping by file extension.
package protocol

// Status is an HTTP status code recognized by the core.
type Status int

const (
	StatusOK                 Status = 200
	StatusNotModified        Status = 304
	StatusBadRequest         Status = 400
	StatusForbidden          Status = 403
	StatusNotFound           Status = 404
	StatusNotAllowed         Status = 405
	StatusTooLarge           Status = 413
	StatusRangeUnsatisfiable Status = 416
	StatusInternalError      Status = 500
)

// Reason returns the short reason string used on the status line.
func (s Status) Reason() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusNotModified:
		return "Not modified"
	case StatusBadRequest:
		return "Bad request"
	case StatusNotFound:
		return "Not found"
	case StatusForbidden:
		return "Forbidden"
	case StatusNotAllowed:
		return "Not allowed"
	case StatusTooLarge:
		return "Request too large"
	case StatusRangeUnsatisfiable:
		return "Requested range unsatisfiable"
	case StatusInternalError:
		return "Internal server error"
	}

	return "Invalid"
}

// Description returns the descriptive message rendered on default error
// pages.
func (s Status) Description() string {
	switch s {
	case StatusOK:
		return "Success!"
	case StatusNotModified:
		return "The content has not changed since previous request."
	case StatusBadRequest:
		return "The client has issued a bad request."
	case StatusNotFound:
		return "The requested resource could not be found on this server."
	case StatusForbidden:
		return "Access to this resource has been denied."
	case StatusNotAllowed:
		return "The requested method is not allowed by this server."
	case StatusTooLarge:
		return "The request entity is too large."
	case StatusRangeUnsatisfiable:
		return "The server can't supply the requested portion of the requested resource."
	case StatusInternalError:
		return "The server encountered an internal error that couldn't be recovered from."
	}

	return "Invalid"
}
