// SPDX-License-Identifier: EPL-2.0

// Package stream provides a buffered random-access byte reader over a file
// path, the input abstraction every decoder in this module consumes.
//
// # Overview
//
// A File wraps an on-disk file behind a fixed-size window buffer (8 KiB by
// default). Sequential reads are served from the window; a Seek whose target
// lands inside the window only moves the in-buffer cursor, which makes the
// header-walk/seek-back patterns of the decoders cheap.
//
//	f := stream.New(0)
//	if err := f.Open("track.wav"); err != nil {
//	    // handle error
//	}
//	defer f.Close()
//
//	hdr := make([]byte, 12)
//	f.Read(hdr)
//	f.SeekTo(0) // back inside the window, no syscall
//
// File implements io.ReadSeeker, so third-party format readers can consume it
// directly.
//
// # Name helpers
//
// Name returns the basename after the last '/' or '\\'; Ext returns the
// lower-cased extension without the dot. Both operate on the opened path and
// are used by the codec detector's extension fallback.
package stream
