// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWav            = errors.New("wav: not a RIFF/WAVE stream")
	ErrBadFmtChunk       = errors.New("wav: malformed fmt chunk")
	ErrMissingChunks     = errors.New("wav: fmt or data chunk missing")
	ErrUnsupportedFormat = errors.New("wav: unsupported audio format code")
)
