// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"github.com/emb-audio/audioengine/audio"
	"github.com/emb-audio/audioengine/stream"
)

// DecodeALawSample expands one A-law byte to linear PCM (ITU-T G.711).
func DecodeALawSample(alaw uint8) int16 {
	alaw ^= 0x55
	sign := alaw & 0x80
	exp := (alaw >> 4) & 7
	mant := int32(alaw & 0x0F)

	var val int32
	if exp == 0 {
		val = (mant << 4) + 8
	} else {
		val = ((mant << 4) + 0x108) << (exp - 1)
	}
	// A-law sign bit set means positive.
	if sign != 0 {
		return int16(val)
	}
	return int16(-val)
}

// DecodeULawSample expands one μ-law byte to linear PCM (ITU-T G.711).
func DecodeULawSample(ulaw uint8) int16 {
	ulaw = ^ulaw
	sign := ulaw & 0x80
	exp := (ulaw >> 4) & 7
	mant := int32(ulaw & 0x0F)
	val := ((mant<<3)+0x84)<<exp - 0x84
	if sign != 0 {
		return int16(-val)
	}
	return int16(val)
}

// g711Decoder is the shared body of the A-law and μ-law decoders: byte-aligned
// reads, table-less expansion, mono downmix by averaging, byte-exact seek.
type g711Decoder struct {
	f      *stream.File
	info   fmtInfo
	read   int64
	status audio.Status
	raw    []byte

	format uint16
	expand func(uint8) int16
}

func (d *g711Decoder) Open(f *stream.File) error {
	d.Close()
	info, err := parseContainer(f, d.format)
	if err != nil {
		return err
	}
	if err := f.SeekTo(info.dataOffset); err != nil {
		return err
	}
	d.f = f
	d.info = info
	d.read = 0
	d.status = audio.StatusReady
	return nil
}

func (d *g711Decoder) Decode(dst []int16) int {
	if d.f == nil || (d.status != audio.StatusReady && d.status != audio.StatusPlaying) {
		return 0
	}
	d.status = audio.StatusPlaying

	chans := int64(d.info.channels)
	frames := (d.info.dataSize - d.read) / chans
	if int64(len(dst)) < frames {
		frames = int64(len(dst))
	}
	if frames == 0 {
		d.status = audio.StatusClosed
		return 0
	}

	need := int(frames * chans)
	if cap(d.raw) < need {
		d.raw = make([]byte, need)
	}
	n, _ := d.f.Read(d.raw[:need])
	got := n / int(chans)
	if got == 0 {
		d.status = audio.StatusClosed
		return 0
	}
	d.read += int64(got) * chans

	for i := 0; i < got; i++ {
		sum := int32(0)
		for c := 0; c < d.info.channels; c++ {
			sum += int32(d.expand(d.raw[i*d.info.channels+c]))
		}
		dst[i] = int16(sum / int32(d.info.channels))
	}
	return got
}

func (d *g711Decoder) Seek(sec int) {
	if d.f == nil {
		return
	}
	if sec < 0 {
		sec = 0
	}
	pos := int64(sec) * int64(d.info.sampleRate) * int64(d.info.channels)
	if pos > d.info.dataSize {
		pos = d.info.dataSize
	}
	d.read = pos
	d.f.SeekTo(d.info.dataOffset + pos)
	if d.status == audio.StatusClosed {
		d.status = audio.StatusReady
	}
}

func (d *g711Decoder) Position() int {
	if d.info.sampleRate == 0 || d.info.channels == 0 {
		return 0
	}
	return int(d.read / int64(d.info.channels) / int64(d.info.sampleRate))
}

func (d *g711Decoder) Duration() int {
	if d.info.sampleRate == 0 || d.info.channels == 0 {
		return 0
	}
	return int(d.info.dataSize / int64(d.info.channels) / int64(d.info.sampleRate))
}

func (d *g711Decoder) SampleRate() int { return d.info.sampleRate }

func (d *g711Decoder) Close() {
	d.f = nil
	d.read = 0
	d.status = audio.StatusClosed
}

func (d *g711Decoder) Status() audio.Status { return d.status }

// ALawDecoder reads WAV A-law (format 6) as mono s16.
type ALawDecoder struct{ g711Decoder }

// NewALawDecoder returns a closed A-law decoder.
func NewALawDecoder() *ALawDecoder {
	d := &ALawDecoder{}
	d.format = wavFormatAlaw
	d.expand = DecodeALawSample
	return d
}

// ULawDecoder reads WAV μ-law (format 7) as mono s16.
type ULawDecoder struct{ g711Decoder }

// NewULawDecoder returns a closed μ-law decoder.
func NewULawDecoder() *ULawDecoder {
	d := &ULawDecoder{}
	d.format = wavFormatUlaw
	d.expand = DecodeULawSample
	return d
}
