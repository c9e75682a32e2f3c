// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"bytes"
	"encoding/binary"

	"github.com/go-audio/riff"

	"github.com/emb-audio/audioengine/stream"
)

// Type identifies the container/codec of an input stream.
type Type uint8

const (
	Unknown Type = iota
	WavPcm
	WavAdpcm
	WavAlaw
	WavUlaw
	Mp3
	Vorbis
)

func (t Type) String() string {
	switch t {
	case WavPcm:
		return "wav-pcm"
	case WavAdpcm:
		return "wav-adpcm"
	case WavAlaw:
		return "wav-alaw"
	case WavUlaw:
		return "wav-ulaw"
	case Mp3:
		return "mp3"
	case Vorbis:
		return "vorbis"
	}
	return "unknown"
}

// sniffLen is how much of the stream head is examined.
const sniffLen = 512

// WAVE format codes carried in the fmt chunk.
const (
	wavFormatPCM   = 1
	wavFormatAlaw  = 6
	wavFormatUlaw  = 7
	wavFormatAdpcm = 0x11
)

// Detect classifies the stream by sniffing up to 512 bytes from offset 0 and
// restores the offset to 0 before returning.
//
// Rules, in order: a RIFF/WAVE prefix is classified by the first fmt chunk's
// audio format field (unrecognized codes fall back to WavPcm as best guess);
// an ID3 prefix or an MPEG frame sync means Mp3; an OggS capture pattern
// means Vorbis; otherwise the file extension decides, else Unknown.
func Detect(f *stream.File) Type {
	f.SeekTo(0)
	hdr := make([]byte, sniffLen)
	n := f.ReadFull(hdr)
	f.SeekTo(0)
	hdr = hdr[:n]

	if n < 12 {
		return byExtension(f)
	}

	if bytes.Equal(hdr[:4], []byte("RIFF")) && bytes.Equal(hdr[8:12], []byte("WAVE")) {
		return detectWav(hdr)
	}

	if bytes.HasPrefix(hdr, []byte("ID3")) {
		return Mp3
	}
	if hdr[0] == 0xFF && hdr[1]&0xE0 == 0xE0 {
		return Mp3
	}
	if bytes.HasPrefix(hdr, []byte("OggS")) {
		return Vorbis
	}

	return byExtension(f)
}

// detectWav walks the RIFF chunks of the sniffed head until the first fmt
// chunk and maps its audio format code. A truncated or fmt-less head is still
// called WavPcm: the RIFF/WAVE magic already matched.
func detectWav(hdr []byte) Type {
	p := riff.New(bytes.NewReader(hdr))
	if err := p.ParseHeaders(); err != nil {
		return WavPcm
	}
	for {
		ch, err := p.NextChunk()
		if err != nil {
			return WavPcm
		}
		if ch.ID == riff.FmtID {
			var format uint16
			if err := binary.Read(ch, binary.LittleEndian, &format); err != nil {
				return WavPcm
			}
			switch format {
			case wavFormatPCM:
				return WavPcm
			case wavFormatAlaw:
				return WavAlaw
			case wavFormatUlaw:
				return WavUlaw
			case wavFormatAdpcm:
				return WavAdpcm
			default:
				return WavPcm
			}
		}
		ch.Done()
	}
}

func byExtension(f *stream.File) Type {
	switch f.Ext() {
	case "mp3":
		return Mp3
	case "wav":
		return WavPcm
	case "ogg", "oga":
		return Vorbis
	}
	return Unknown
}
