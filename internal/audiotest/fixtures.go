// SPDX-License-Identifier: EPL-2.0

// Package audiotest synthesizes the audio fixtures the engine tests decode:
// WAV containers in every supported sub-format, G.711 and IMA-ADPCM payloads
// and raw MPEG frame sequences for the duration estimator.
package audiotest

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	gaudio "github.com/go-audio/audio"
	gwav "github.com/go-audio/wav"
)

// Sine generates n mono samples of a sine wave at freq Hz / amp full scale.
func Sine(n int, freq float64, sampleRate int, amp float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		out[i] = int16(amp * 32767 * math.Sin(2*math.Pi*freq*t))
	}
	return out
}

// Ramp generates n monotonically increasing samples from lo to hi.
func Ramp(n int, lo, hi int16) []int16 {
	out := make([]int16, n)
	span := int32(hi) - int32(lo)
	for i := range out {
		out[i] = int16(int32(lo) + span*int32(i)/int32(n-1))
	}
	return out
}

// WriteWavPCM16 writes a 16-bit PCM WAV file through the go-audio encoder and
// returns its path. samples are interleaved when channels > 1.
func WriteWavPCM16(tb testing.TB, dir, name string, sampleRate, channels int, samples []int16) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	enc := gwav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		tb.Fatalf("encode %s: %v", path, err)
	}
	if err := enc.Close(); err != nil {
		tb.Fatalf("close %s: %v", path, err)
	}
	return path
}

// BuildWav assembles a RIFF/WAVE container by hand: a fmt chunk with the
// given format code (plus optional extra fmt bytes) and a data chunk holding
// payload. Used for the sub-formats the go-audio encoder does not produce.
func BuildWav(format uint16, channels, sampleRate, bitsPerSample, blockAlign int, extraFmt, payload []byte) []byte {
	fmtLen := 16 + len(extraFmt)
	riffSize := 4 + 8 + fmtLen + 8 + len(payload)
	out := make([]byte, 0, 12+8+fmtLen+8+len(payload))

	le16 := func(v int) []byte { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, uint16(v)); return b }
	le32 := func(v int) []byte { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, uint32(v)); return b }

	out = append(out, "RIFF"...)
	out = append(out, le32(riffSize)...)
	out = append(out, "WAVE"...)

	out = append(out, "fmt "...)
	out = append(out, le32(fmtLen)...)
	out = append(out, le16(int(format))...)
	out = append(out, le16(channels)...)
	out = append(out, le32(sampleRate)...)
	byteRate := sampleRate * channels * bitsPerSample / 8
	out = append(out, le32(byteRate)...)
	out = append(out, le16(blockAlign)...)
	out = append(out, le16(bitsPerSample)...)
	out = append(out, extraFmt...)

	out = append(out, "data"...)
	out = append(out, le32(len(payload))...)
	out = append(out, payload...)
	return out
}

// WriteFile dumps raw bytes under dir and returns the path.
func WriteFile(tb testing.TB, dir, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
	return path
}

/* ── G.711 ── */

// EncodeULaw compresses linear samples to μ-law bytes (ITU-T G.711).
func EncodeULaw(samples []int16) []byte {
	out := make([]byte, len(samples))
	for i, s := range samples {
		out[i] = ulawEncodeSample(s)
	}
	return out
}

func ulawEncodeSample(s int16) byte {
	const bias = 0x84
	const clip = 32635
	v := int32(s)
	sign := byte(0)
	if v < 0 {
		v = -v
		sign = 0x80
	}
	if v > clip {
		v = clip
	}
	v += bias
	exp := 7
	for mask := int32(0x4000); exp > 0 && v&mask == 0; mask >>= 1 {
		exp--
	}
	mant := byte((v >> (uint(exp) + 3)) & 0x0F)
	return ^(sign | byte(exp)<<4 | mant)
}

// EncodeALaw compresses linear samples to A-law bytes (ITU-T G.711).
func EncodeALaw(samples []int16) []byte {
	out := make([]byte, len(samples))
	for i, s := range samples {
		out[i] = alawEncodeSample(s)
	}
	return out
}

func alawEncodeSample(s int16) byte {
	v := int32(s)
	sign := byte(0x80)
	if v < 0 {
		v = ^v
		sign = 0
	}
	if v > 32635 {
		v = 32635
	}
	var a byte
	if v >= 256 {
		exp := 7
		for mask := int32(0x4000); exp > 1 && v&mask == 0; mask >>= 1 {
			exp--
		}
		mant := byte((v >> (uint(exp) + 3)) & 0x0F)
		a = byte(exp)<<4 | mant
	} else {
		a = byte(v >> 4)
	}
	return (a | sign) ^ 0x55
}

/* ── IMA-ADPCM ── */

var imaStep = [89]int16{
	7, 8, 9, 10, 11, 12, 13, 14, 16, 17, 19, 21, 23, 25, 28, 31, 34, 37, 41, 45,
	50, 55, 60, 66, 73, 80, 88, 97, 107, 118, 130, 143, 157, 173, 190, 209,
	230, 253, 279, 307, 337, 371, 408, 449, 494, 544, 598, 658, 724, 796,
	876, 963, 1060, 1166, 1282, 1411, 1552, 1707, 1878, 2066, 2272, 2499,
	2749, 3024, 3327, 3660, 4026, 4428, 4871, 5358, 5894, 6484, 7132,
	7845, 8630, 9493, 10442, 11487, 12635, 13899, 15289, 16818, 18500,
	20350, 22385, 24623, 27086, 29794, 32767,
}

var imaIndex = [16]int8{-1, -1, -1, -1, 2, 4, 6, 8, -1, -1, -1, -1, 2, 4, 6, 8}

// EncodeIMAMono compresses mono samples into IMA-ADPCM blocks of blockAlign
// bytes. It returns the payload, the samples-per-block value for the fmt
// chunk and the exact sample sequence a conforming decoder reconstructs
// (the predictor trace), so tests can compare byte-exactly. Trailing samples
// that do not fill a block are dropped.
func EncodeIMAMono(samples []int16, blockAlign int) (payload []byte, samplesPerBlock int, decoded []int16) {
	samplesPerBlock = (blockAlign-4)*2 + 1
	var out []byte

	for len(samples) >= samplesPerBlock {
		pred := samples[0]
		idx := int8(0)
		block := make([]byte, 0, blockAlign)
		block = append(block, byte(uint16(pred)), byte(uint16(pred)>>8), byte(idx), 0)
		decoded = append(decoded, pred)

		var nibbles []byte
		for _, s := range samples[1:samplesPerBlock] {
			n, np, ni := imaEncodeNibble(s, pred, idx)
			nibbles = append(nibbles, n)
			pred, idx = np, ni
			decoded = append(decoded, pred)
		}
		for i := 0; i < len(nibbles); i += 2 {
			b := nibbles[i]
			if i+1 < len(nibbles) {
				b |= nibbles[i+1] << 4
			}
			block = append(block, b)
		}
		for len(block) < blockAlign {
			block = append(block, 0)
		}
		out = append(out, block...)
		samples = samples[samplesPerBlock:]
	}
	return out, samplesPerBlock, decoded
}

func imaEncodeNibble(s, pred int16, idx int8) (nibble byte, newPred int16, newIdx int8) {
	step := int32(imaStep[idx])
	diff := int32(s) - int32(pred)
	var n byte
	if diff < 0 {
		n = 8
		diff = -diff
	}
	if diff >= step {
		n |= 4
		diff -= step
	}
	if diff >= step>>1 {
		n |= 2
		diff -= step >> 1
	}
	if diff >= step>>2 {
		n |= 1
	}

	// Reconstruct exactly like the decoder to keep the predictor in sync.
	delta := step >> 3
	if n&1 != 0 {
		delta += step >> 2
	}
	if n&2 != 0 {
		delta += step >> 1
	}
	if n&4 != 0 {
		delta += step
	}
	if n&8 != 0 {
		delta = -delta
	}
	p := int32(pred) + delta
	if p > 32767 {
		p = 32767
	} else if p < -32768 {
		p = -32768
	}

	i := int(idx) + int(imaIndex[n])
	if i < 0 {
		i = 0
	} else if i > 88 {
		i = 88
	}
	return n, int16(p), int8(i)
}

/* ── MP3 ── */

// Parameters of the CBR frames BuildMP3CBR emits:
// MPEG1 Layer 3, 128 kbit/s, 44.1 kHz, no padding.
const (
	MP3FrameSize       = 417
	MP3SampleRate      = 44100
	MP3SamplesPerFrame = 1152
)

// BuildMP3CBR builds a sequence of syntactically valid MPEG1 Layer 3 stereo
// frame headers with zeroed payloads. With xingFrames > 0 the first frame
// carries a Xing header declaring that frame count.
func BuildMP3CBR(frames int, xingFrames int) []byte {
	out := make([]byte, 0, frames*MP3FrameSize)
	for i := 0; i < frames; i++ {
		frame := make([]byte, MP3FrameSize)
		// 0xFFFB: sync, MPEG1, Layer 3; 0x90: 128 kbit/s, 44.1 kHz; stereo.
		frame[0], frame[1], frame[2], frame[3] = 0xFF, 0xFB, 0x90, 0x00
		if i == 0 && xingFrames > 0 {
			// Side info for MPEG1 stereo is 32 bytes past the 4-byte header.
			off := 4 + 32
			copy(frame[off:], "Xing")
			binary.BigEndian.PutUint32(frame[off+4:], 1) // frames field present
			binary.BigEndian.PutUint32(frame[off+8:], uint32(xingFrames))
		}
		out = append(out, frame...)
	}
	return out
}

// WithID3v2 prepends a minimal ID3v2 tag of tagSize payload bytes.
func WithID3v2(tagSize int, rest []byte) []byte {
	hdr := []byte{'I', 'D', '3', 3, 0, 0,
		byte(tagSize >> 21 & 0x7F), byte(tagSize >> 14 & 0x7F),
		byte(tagSize >> 7 & 0x7F), byte(tagSize & 0x7F)}
	out := append(hdr, make([]byte, tagSize)...)
	return append(out, rest...)
}
