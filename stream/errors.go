// SPDX-License-Identifier: EPL-2.0

package stream

import "errors"

var (
	ErrNotOpen      = errors.New("stream: no file open")
	ErrBadWhence    = errors.New("stream: invalid whence")
	ErrNegativeSeek = errors.New("stream: negative position")
)
