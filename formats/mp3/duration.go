// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"github.com/emb-audio/audioengine/stream"
)

// DurationInfo is the result of EstimateDuration.
type DurationInfo struct {
	DurationSec int
	SampleRate  int
	Channels    int
	// Exact is true when the duration came from a Xing/Info frame count
	// rather than a bitrate average.
	Exact bool
}

// Standard MPEG bitrate tables in kbit/s, [version][layer][index] with
// version 0 = MPEG1, 1 = MPEG2/2.5 and layer 0..2 = Layer 1..3.
var mpegBitrates = [2][3][16]int{
	{
		{0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448, 0},
		{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384, 0},
		{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0},
	},
	{
		{0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256, 0},
		{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0},
		{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0},
	},
}

// Sample rates indexed by the raw 2-bit version field then the 2-bit rate
// index. Version field: 0=MPEG2.5, 1=reserved, 2=MPEG2, 3=MPEG1.
var mpegSampleRates = [4][4]int{
	{11025, 12000, 8000, 0},
	{0, 0, 0, 0},
	{22050, 24000, 16000, 0},
	{44100, 48000, 32000, 0},
}

// Samples per frame indexed by version field then layer (0..2 = L1..L3).
var mpegSamplesPerFrame = [4][3]int{
	{384, 1152, 576},
	{0, 0, 0},
	{384, 1152, 576},
	{384, 1152, 1152},
}

type frameInfo struct {
	bitrate         int // bits per second
	sampleRate      int
	samplesPerFrame int
	frameSize       int
	channels        int
	mpeg1           bool
	valid           bool
}

// parseFrameHeader validates and decodes a 4-byte MPEG frame header.
// Reserved version/layer values, bitrate indices 0 and 15 and sample-rate
// index 3 are rejected.
func parseFrameHeader(h []byte) frameInfo {
	var fi frameInfo
	if len(h) < 4 || h[0] != 0xFF || h[1]&0xE0 != 0xE0 {
		return fi
	}

	versionBits := (h[1] >> 3) & 3
	layerBits := (h[1] >> 1) & 3
	brIdx := (h[2] >> 4) & 0xF
	srIdx := (h[2] >> 2) & 3
	padding := int((h[2] >> 1) & 1)
	mode := (h[3] >> 6) & 3

	if versionBits == 1 || layerBits == 0 || brIdx == 0 || brIdx == 15 || srIdx == 3 {
		return fi
	}

	vIdx := 1
	if versionBits == 3 {
		vIdx = 0
	}
	lIdx := 3 - int(layerBits)

	fi.bitrate = mpegBitrates[vIdx][lIdx][brIdx] * 1000
	fi.sampleRate = mpegSampleRates[versionBits][srIdx]
	fi.samplesPerFrame = mpegSamplesPerFrame[versionBits][lIdx]
	fi.mpeg1 = versionBits == 3
	fi.channels = 2
	if mode == 3 {
		fi.channels = 1
	}
	fi.valid = fi.bitrate > 0 && fi.sampleRate > 0 && fi.samplesPerFrame > 0
	if !fi.valid {
		return fi
	}

	if lIdx == 0 {
		fi.frameSize = (12*fi.bitrate/fi.sampleRate + padding) * 4
	} else {
		fi.frameSize = fi.samplesPerFrame/8*fi.bitrate/fi.sampleRate + padding
	}
	return fi
}

// skipID3v2 returns the offset of the first audio byte: past the ID3v2 tag
// when one is present (10-byte header plus the 4-byte syncsafe size), else 0.
func skipID3v2(f *stream.File) int64 {
	f.SeekTo(0)
	hdr := make([]byte, 10)
	if f.ReadFull(hdr) < 10 {
		return 0
	}
	if hdr[0] != 'I' || hdr[1] != 'D' || hdr[2] != '3' {
		return 0
	}
	size := int64(hdr[6]&0x7F)<<21 | int64(hdr[7]&0x7F)<<14 |
		int64(hdr[8]&0x7F)<<7 | int64(hdr[9]&0x7F)
	return size + 10
}

const (
	syncScanLimit = 8192
	maxAvgFrames  = 200
)

// EstimateDuration computes the stream duration without decoding. A Xing or
// Info header yields the exact frame count; otherwise frame bitrates are
// averaged until two consecutive 5-frame averages differ by less than 1 %,
// and the duration is extrapolated from the file size.
func EstimateDuration(f *stream.File) DurationInfo {
	var res DurationInfo
	fileSize := f.Size()

	dataStart := skipID3v2(f)

	// Find the first valid frame within the scan window.
	var first frameInfo
	hdr := make([]byte, 4)
	pos := dataStart
	for pos < dataStart+syncScanLimit {
		f.SeekTo(pos)
		if f.ReadFull(hdr) < 4 {
			return res
		}
		first = parseFrameHeader(hdr)
		if first.valid {
			break
		}
		pos++
	}
	if !first.valid {
		return res
	}
	res.SampleRate = first.sampleRate
	res.Channels = first.channels
	firstFramePos := pos

	// Xing/Info header: side-info offset depends on MPEG version and channel
	// count (MPEG1 mono=17/stereo=32, MPEG2 mono=9/stereo=17), plus the
	// 4-byte frame header.
	xbuf := make([]byte, 256)
	f.SeekTo(firstFramePos)
	xn := first.frameSize
	if xn > len(xbuf) {
		xn = len(xbuf)
	}
	xn = f.ReadFull(xbuf[:xn])

	sideOffset := 4
	if first.mpeg1 {
		if first.channels == 1 {
			sideOffset += 17
		} else {
			sideOffset += 32
		}
	} else {
		if first.channels == 1 {
			sideOffset += 9
		} else {
			sideOffset += 17
		}
	}

	if sideOffset+12 < xn {
		tag := string(xbuf[sideOffset : sideOffset+4])
		if tag == "Xing" || tag == "Info" {
			flags := uint32(xbuf[sideOffset+4])<<24 | uint32(xbuf[sideOffset+5])<<16 |
				uint32(xbuf[sideOffset+6])<<8 | uint32(xbuf[sideOffset+7])
			if flags&1 != 0 {
				frames := int64(xbuf[sideOffset+8])<<24 | int64(xbuf[sideOffset+9])<<16 |
					int64(xbuf[sideOffset+10])<<8 | int64(xbuf[sideOffset+11])
				res.DurationSec = int(frames * int64(first.samplesPerFrame) / int64(first.sampleRate))
				res.Exact = true
				return res
			}
		}
	}

	// No Xing header: walk frames accumulating bitrates until the running
	// average stabilizes.
	var totalBitrate int64
	frameCount := 0
	prevAvg := 0

	pos = firstFramePos
	for frameCount < maxAvgFrames && pos+4 < fileSize {
		f.SeekTo(pos)
		if f.ReadFull(hdr) < 4 {
			break
		}
		fi := parseFrameHeader(hdr)
		if !fi.valid {
			pos++
			continue
		}

		totalBitrate += int64(fi.bitrate)
		frameCount++
		pos += int64(fi.frameSize)

		if frameCount >= 5 && frameCount%5 == 0 {
			avg := int(totalBitrate / int64(frameCount))
			if prevAvg > 0 {
				delta := avg - prevAvg
				if delta < 0 {
					delta = -delta
				}
				if delta*100 < prevAvg {
					break
				}
			}
			prevAvg = avg
		}
	}

	if frameCount > 0 && totalBitrate > 0 {
		avgBitrate := totalBitrate / int64(frameCount)
		res.DurationSec = int((fileSize - dataStart) * 8 / avgBitrate)
	}
	return res
}
