// SPDX-License-Identifier: EPL-2.0

// Package audio holds the fixed-point building blocks shared by the playback
// engine: the decoder contract, the Q16 resampler and Q15 volume scaling.
//
// # Decoder contract
//
// Every format decoder (see the formats subpackages) implements Decoder:
// it opens a stream.File, produces mono s16 sample runs from Decode, seeks by
// second and reports position, duration and sample rate. A Decode returning 0
// means end of stream and moves the decoder to StatusClosed.
//
// # Resampling
//
// Resampler converts between sample rates with a Q16 phase accumulator and
// linear (or nearest) interpolation:
//
//	r := audio.NewResampler()
//	r.SetRates(44100, 128000)
//	need := r.OutputLength(len(block))
//	written := r.Process(block, seg1, seg2)
//
// Process writes into a split destination (the two segments of a hardware
// ring's writable region), so no intermediate buffer is needed.
//
// # Volume
//
// VolumeTable maps the 0..10 user volume to Q15 scale factors and ScaleQ15
// applies one in place with saturation. Settings of 7 and above are
// passthrough; the pipeline skips scaling entirely for them.
package audio
