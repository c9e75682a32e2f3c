// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis playback behind the engine's decoder
// contract, wrapping github.com/jfreymuth/oggvorbis.
//
// The wrapped reader delivers interleaved float32 frames; Decode averages the
// channels into mono and converts to s16. Because the underlying stream is
// seekable, position, duration and Seek are all sample-exact. This is the
// only decoder in the engine where compressed seek is not an approximation.
package vorbis
