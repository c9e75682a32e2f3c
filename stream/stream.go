// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultBufSize is the size of the internal read buffer when none is given.
const DefaultBufSize = 8192

// File is a buffered random-access reader over a file path.
//
// Reads go through an internal window buffer; a Seek that lands inside the
// window only moves the in-buffer cursor. File implements io.ReadSeeker so
// format libraries can consume it directly. A single File is reused across
// tracks via Open/Close.
type File struct {
	f    *os.File
	path string

	buf    []byte
	bufPos int
	bufLen int
	// offset of buf[0] within the file
	fileOffset int64
	fileSize   int64
}

// Format readers consume a File directly.
var _ io.ReadSeeker = (*File)(nil)

// New returns a closed File with an internal buffer of bufSize bytes
// (DefaultBufSize if bufSize <= 0).
func New(bufSize int) *File {
	if bufSize <= 0 {
		bufSize = DefaultBufSize
	}
	return &File{buf: make([]byte, bufSize)}
}

// Open opens path for reading, records the total size and resets the buffer.
// Any previously opened file is closed first.
func (s *File) Open(path string) error {
	s.Close()
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("%w", err)
	}
	s.f = f
	s.path = path
	s.fileSize = st.Size()
	s.fileOffset = 0
	s.bufPos, s.bufLen = 0, 0
	return nil
}

// Close closes the underlying file. Safe to call on a closed File.
func (s *File) Close() {
	if s.f != nil {
		s.f.Close()
		s.f = nil
	}
	s.path = ""
	s.fileSize = 0
	s.fileOffset = 0
	s.bufPos, s.bufLen = 0, 0
}

// IsOpen reports whether a file is currently open.
func (s *File) IsOpen() bool { return s.f != nil }

// Read fills dst from the buffered window, refilling on exhaustion.
// Returns io.EOF once the file is drained.
func (s *File) Read(dst []byte) (int, error) {
	if s.f == nil {
		return 0, ErrNotOpen
	}
	total := 0
	for total < len(dst) {
		if s.bufPos >= s.bufLen {
			if !s.refill() {
				break
			}
		}
		n := copy(dst[total:], s.buf[s.bufPos:s.bufLen])
		s.bufPos += n
		total += n
	}
	if total == 0 && len(dst) > 0 {
		return 0, io.EOF
	}
	return total, nil
}

// ReadFull reads up to len(dst) bytes; like Read but returns only the count.
// Convenient for header sniffing.
func (s *File) ReadFull(dst []byte) int {
	n, _ := s.Read(dst)
	return n
}

// Seek implements io.Seeker. A target inside the buffered window only moves
// the in-buffer cursor, so Seek(Tell()) is a no-op with respect to reads.
func (s *File) Seek(offset int64, whence int) (int64, error) {
	if s.f == nil {
		return 0, ErrNotOpen
	}
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = s.Tell() + offset
	case io.SeekEnd:
		pos = s.fileSize + offset
	default:
		return 0, ErrBadWhence
	}
	if pos < 0 {
		return 0, ErrNegativeSeek
	}
	if pos >= s.fileOffset && pos < s.fileOffset+int64(s.bufLen) {
		s.bufPos = int(pos - s.fileOffset)
		return pos, nil
	}
	if _, err := s.f.Seek(pos, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w", err)
	}
	s.fileOffset = pos
	s.bufPos, s.bufLen = 0, 0
	return pos, nil
}

// SeekTo positions the read cursor at pos from the start of the file.
func (s *File) SeekTo(pos int64) error {
	_, err := s.Seek(pos, io.SeekStart)
	return err
}

// Tell returns the current read position.
func (s *File) Tell() int64 { return s.fileOffset + int64(s.bufPos) }

// Size returns the total file size in bytes.
func (s *File) Size() int64 { return s.fileSize }

// Path returns the path the File was opened with.
func (s *File) Path() string { return s.path }

// Name returns the basename of the path, after the last '/' or '\\'.
func (s *File) Name() string {
	p := s.path
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		p = p[i+1:]
	}
	return p
}

// Ext returns the lower-cased suffix after the last '.' of Name, without the
// dot. Empty when the name has no extension.
func (s *File) Ext() string {
	n := s.Name()
	i := strings.LastIndexByte(n, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(n[i+1:])
}

func (s *File) refill() bool {
	s.fileOffset += int64(s.bufLen)
	n, err := s.f.Read(s.buf)
	s.bufLen = n
	s.bufPos = 0
	if err != nil && n == 0 {
		return false
	}
	return n > 0
}
