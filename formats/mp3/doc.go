// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 playback support for the engine: a decoder
// wrapping github.com/hajimehoshi/go-mp3 and a header-level duration
// estimator that never decodes audio.
//
// # Decoder
//
// Decoder implements the audio.Decoder contract. Open first runs the
// duration estimator to seed duration, sample rate and channel count, then
// hands the stream to the wrapped frame decoder (which skips ID3 tags and
// resynchronizes on damaged data itself). Decode downmixes the stereo output
// pairs to mono by averaging.
//
// # Duration estimation
//
// EstimateDuration skips an ID3v2 tag, scans up to 8 KiB for the first valid
// frame header and then:
//
//   - reads the Xing/Info header at the version/channel-dependent side-info
//     offset; a present frames field gives the exact duration, or
//   - walks frames accumulating bitrates (up to 200 frames), declaring
//     convergence when two consecutive 5-frame running averages differ by
//     less than 1 %, and extrapolates from the file size.
//
// Frame header validation follows the standard MPEG 1/2/2.5 × Layer 1/2/3
// tables; reserved version and layer values, bitrate indices 0/15 and
// sample-rate index 3 are rejected.
package mp3
