// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/emb-audio/audioengine/audio"
	"github.com/emb-audio/audioengine/stream"
)

// Decoder wraps the third-party MP3 frame decoder behind the engine's
// decoder contract. The wrapped decoder emits interleaved stereo s16 frames
// regardless of the source channel count; Decode averages each pair into
// mono.
//
// Seeking is frame-indexed through the wrapped decoder and the reported
// position is kept consistent by pinning the decoded-sample counter to
// sec*sampleRate. For VBR streams without a Xing header both duration and
// seek targets are approximations.
type Decoder struct {
	f   *stream.File
	dec *gomp3.Decoder

	sampleRate   int
	channels     int
	duration     int
	totalSamples int64
	status       audio.Status
	raw          []byte
}

// NewDecoder returns a closed MP3 decoder.
func NewDecoder() *Decoder { return &Decoder{} }

func (d *Decoder) Open(f *stream.File) error {
	d.Close()

	// Seed duration, rate and channel count without decoding.
	est := EstimateDuration(f)
	d.duration = est.DurationSec
	d.sampleRate = est.SampleRate
	if d.sampleRate == 0 {
		d.sampleRate = 44100
	}
	d.channels = est.Channels
	if d.channels == 0 {
		d.channels = 2
	}

	if err := f.SeekTo(0); err != nil {
		return err
	}
	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		return fmt.Errorf("mp3: %w", err)
	}
	if dec.SampleRate() > 0 {
		d.sampleRate = dec.SampleRate()
	}

	d.f = f
	d.dec = dec
	d.totalSamples = 0
	d.status = audio.StatusReady
	return nil
}

func (d *Decoder) Decode(dst []int16) int {
	if d.dec == nil || (d.status != audio.StatusReady && d.status != audio.StatusPlaying) {
		return 0
	}
	d.status = audio.StatusPlaying

	// One mono output sample per 4-byte stereo frame.
	need := len(dst) * 4
	if cap(d.raw) < need {
		d.raw = make([]byte, need)
	}
	n, err := io.ReadFull(d.dec, d.raw[:need])
	frames := n / 4
	if frames == 0 {
		if err != nil {
			d.status = audio.StatusClosed
		}
		return 0
	}

	for i := 0; i < frames; i++ {
		l := int32(int16(uint16(d.raw[i*4]) | uint16(d.raw[i*4+1])<<8))
		r := int32(int16(uint16(d.raw[i*4+2]) | uint16(d.raw[i*4+3])<<8))
		dst[i] = int16((l + r) / 2)
	}
	d.totalSamples += int64(frames)
	return frames
}

func (d *Decoder) Seek(sec int) {
	if d.dec == nil {
		return
	}
	if sec < 0 {
		sec = 0
	}
	if d.duration > 0 && sec > d.duration {
		sec = d.duration
	}
	off := int64(sec) * int64(d.sampleRate) * 4
	if _, err := d.dec.Seek(off, io.SeekStart); err != nil {
		d.status = audio.StatusError
		return
	}
	d.totalSamples = int64(sec) * int64(d.sampleRate)
	if d.status == audio.StatusClosed {
		d.status = audio.StatusReady
	}
}

func (d *Decoder) Position() int {
	if d.sampleRate == 0 {
		return 0
	}
	return int(d.totalSamples / int64(d.sampleRate))
}

func (d *Decoder) Duration() int { return d.duration }

func (d *Decoder) SampleRate() int { return d.sampleRate }

func (d *Decoder) Close() {
	d.f = nil
	d.dec = nil
	d.totalSamples = 0
	d.duration = 0
	d.status = audio.StatusClosed
}

func (d *Decoder) Status() audio.Status { return d.status }
