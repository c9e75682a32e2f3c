// SPDX-License-Identifier: EPL-2.0

// Package wav provides the WAV container decoders of the playback engine:
// linear PCM, IMA-ADPCM, A-law and μ-law.
//
// All decoders implement the audio.Decoder contract: they parse the RIFF
// chunks of an open stream.File, produce mono s16 sample runs and seek by
// second.
//
// # Sub-formats
//
//   - PCMDecoder: format code 1; 8/16/24/32-bit samples, any channel count.
//     8-bit input is biased by −128 and shifted left 8; 24-bit is
//     sign-extended from the top bit and shifted right 8; 32-bit is shifted
//     right 16. Multi-channel frames are averaged into mono.
//   - ADPCMDecoder: format code 0x11 (IMA). Each block starts with a 4-byte
//     per-channel header (predictor, step index); nibbles follow the
//     canonical IMA step/index tables with ±32767 saturation. Stereo blocks
//     interleave 4-byte chunks per channel. A decoded block can exceed the
//     caller's buffer, so a single-block scratch emits the remainder on the
//     next Decode. Seek repositions at a block boundary.
//   - ALawDecoder / ULawDecoder: format codes 6 and 7; table-less G.711
//     inverse by bit manipulation, byte-exact seek.
//
// # Usage
//
//	d := wav.NewPCMDecoder()
//	if err := d.Open(f); err != nil {
//	    // not a usable WAV stream
//	}
//	buf := make([]int16, 1024)
//	for n := d.Decode(buf); n > 0; n = d.Decode(buf) {
//	    // consume buf[:n]
//	}
package wav
