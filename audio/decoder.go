// SPDX-License-Identifier: EPL-2.0

package audio

import "github.com/emb-audio/audioengine/stream"

// Status describes the lifecycle state of a decoder.
type Status uint8

const (
	StatusClosed Status = iota
	StatusReady
	StatusPlaying
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusClosed:
		return "closed"
	case StatusReady:
		return "ready"
	case StatusPlaying:
		return "playing"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Decoder is the contract every format decoder implements. Decoders produce
// mono signed 16-bit sample runs; multi-channel input is downmixed by
// arithmetic mean.
//
// A decoder holds a non-owning reference to the stream from Open until Close.
// Decode fills dst and returns the number of samples produced; 0 signals end
// of stream and moves the decoder to StatusClosed. Seek positions playback at
// the given second, clamping to the stream bounds.
type Decoder interface {
	Open(f *stream.File) error
	Decode(dst []int16) int
	Seek(sec int)
	Position() int
	Duration() int
	SampleRate() int
	Close()
	Status() Status
}
