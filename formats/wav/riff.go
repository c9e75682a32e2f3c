// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"io"

	"github.com/emb-audio/audioengine/stream"
)

// WAVE format codes carried in the fmt chunk.
const (
	wavFormatPCM   = 1
	wavFormatAlaw  = 6
	wavFormatUlaw  = 7
	wavFormatAdpcm = 0x11
)

// fmtInfo carries the fields of a WAVE fmt chunk the decoders need.
type fmtInfo struct {
	format          uint16
	channels        int
	sampleRate      int
	blockAlign      int
	bitsPerSample   int
	samplesPerBlock int // extended field, ADPCM only

	dataOffset int64
	dataSize   int64
}

// parseContainer walks the RIFF chunks of an open stream and returns the fmt
// fields plus the location of the data chunk. The walk stops once both chunks
// were seen. wantFormat guards against a detector/decoder mismatch.
func parseContainer(f *stream.File, wantFormat uint16) (fmtInfo, error) {
	var info fmtInfo

	if err := f.SeekTo(0); err != nil {
		return info, err
	}
	hdr := make([]byte, 12)
	if _, err := io.ReadFull(f, hdr); err != nil {
		return info, ErrNotWav
	}
	if string(hdr[:4]) != "RIFF" || string(hdr[8:12]) != "WAVE" {
		return info, ErrNotWav
	}

	gotFmt, gotData := false, false
	pos := int64(12)
	for pos+8 < f.Size() {
		if err := f.SeekTo(pos); err != nil {
			break
		}
		ch := make([]byte, 8)
		if _, err := io.ReadFull(f, ch); err != nil {
			break
		}
		size := int64(binary.LittleEndian.Uint32(ch[4:8]))

		switch string(ch[:4]) {
		case "fmt ":
			if size < 16 {
				return info, ErrBadFmtChunk
			}
			n := size
			if n > 20 {
				n = 20
			}
			buf := make([]byte, n)
			if _, err := io.ReadFull(f, buf); err != nil {
				return info, ErrBadFmtChunk
			}
			info.format = binary.LittleEndian.Uint16(buf[0:2])
			info.channels = int(binary.LittleEndian.Uint16(buf[2:4]))
			info.sampleRate = int(binary.LittleEndian.Uint32(buf[4:8]))
			info.blockAlign = int(binary.LittleEndian.Uint16(buf[12:14]))
			info.bitsPerSample = int(binary.LittleEndian.Uint16(buf[14:16]))
			if n >= 20 {
				info.samplesPerBlock = int(binary.LittleEndian.Uint16(buf[18:20]))
			}
			gotFmt = true
		case "data":
			info.dataOffset = pos + 8
			info.dataSize = size
			gotData = true
		}

		pos += 8 + size
		if size&1 == 1 {
			pos++ // RIFF chunks are word-aligned
		}
		if gotFmt && gotData {
			break
		}
	}

	if !gotFmt || !gotData {
		return info, ErrMissingChunks
	}
	if info.format != wantFormat {
		return info, ErrUnsupportedFormat
	}
	if info.channels == 0 || info.sampleRate == 0 {
		return info, ErrBadFmtChunk
	}
	return info, nil
}
