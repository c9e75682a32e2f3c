// SPDX-License-Identifier: EPL-2.0

// Package codec classifies input streams by header sniffing.
//
// Detect reads up to 512 bytes from the start of the stream, restores the
// read position, and returns a Type:
//
//   - RIFF/WAVE containers are classified by the first fmt chunk's audio
//     format code (PCM, IMA-ADPCM, A-law, μ-law); any other code is reported
//     as WavPcm as the best guess.
//   - An ID3v2 prefix or an MPEG frame sync word classifies as Mp3.
//   - An OggS capture pattern classifies as Vorbis.
//   - Anything else falls back to the file extension, then Unknown.
//
// The detector never fails: unknown content simply yields Unknown and the
// caller skips the track.
package codec
