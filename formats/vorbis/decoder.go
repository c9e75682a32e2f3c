// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"

	"github.com/jfreymuth/oggvorbis"

	"github.com/emb-audio/audioengine/audio"
	"github.com/emb-audio/audioengine/stream"
	"github.com/emb-audio/audioengine/utils"
)

// Decoder wraps github.com/jfreymuth/oggvorbis behind the engine's decoder
// contract. The wrapped reader produces interleaved float32 frames; Decode
// averages channels into mono and converts to s16. Seeking is sample-exact.
type Decoder struct {
	f *stream.File
	r *oggvorbis.Reader

	status audio.Status
	raw    []float32
}

// NewDecoder returns a closed Vorbis decoder.
func NewDecoder() *Decoder { return &Decoder{} }

func (d *Decoder) Open(f *stream.File) (err error) {
	d.Close()
	if err := f.SeekTo(0); err != nil {
		return err
	}
	// The wrapped reader panics on some malformed streams instead of
	// returning an error; report that as an open failure.
	defer func() {
		if p := recover(); p != nil {
			d.Close()
			err = fmt.Errorf("vorbis: malformed stream: %v", p)
		}
	}()
	r, err := oggvorbis.NewReader(f)
	if err != nil {
		return fmt.Errorf("vorbis: %w", err)
	}
	d.f = f
	d.r = r
	d.status = audio.StatusReady
	return nil
}

func (d *Decoder) Decode(dst []int16) int {
	if d.r == nil || (d.status != audio.StatusReady && d.status != audio.StatusPlaying) {
		return 0
	}
	d.status = audio.StatusPlaying

	chans := d.r.Channels()
	if chans <= 0 {
		d.status = audio.StatusError
		return 0
	}
	need := len(dst) * chans
	if cap(d.raw) < need {
		d.raw = make([]float32, need)
	}
	raw := d.raw[:need]

	total := 0
	for total < need {
		n, err := d.r.Read(raw[total:])
		total += n
		if err != nil {
			break
		}
		if n == 0 {
			break
		}
	}
	frames := total / chans
	if frames == 0 {
		d.status = audio.StatusClosed
		return 0
	}

	inv := float32(1) / float32(chans)
	for i := 0; i < frames; i++ {
		sum := float32(0)
		for c := 0; c < chans; c++ {
			sum += raw[i*chans+c]
		}
		dst[i] = utils.Float32ToInt16(sum * inv)
	}
	return frames
}

func (d *Decoder) Seek(sec int) {
	if d.r == nil {
		return
	}
	if sec < 0 {
		sec = 0
	}
	pos := int64(sec) * int64(d.r.SampleRate())
	if total := d.r.Length(); total > 0 && pos > total {
		pos = total
	}
	if err := d.r.SetPosition(pos); err != nil {
		d.status = audio.StatusError
		return
	}
	if d.status == audio.StatusClosed {
		d.status = audio.StatusReady
	}
}

func (d *Decoder) Position() int {
	if d.r == nil || d.r.SampleRate() == 0 {
		return 0
	}
	return int(d.r.Position() / int64(d.r.SampleRate()))
}

func (d *Decoder) Duration() int {
	if d.r == nil || d.r.SampleRate() == 0 {
		return 0
	}
	return int(d.r.Length() / int64(d.r.SampleRate()))
}

func (d *Decoder) SampleRate() int {
	if d.r == nil {
		return 0
	}
	return d.r.SampleRate()
}

func (d *Decoder) Close() {
	d.f = nil
	d.r = nil
	d.status = audio.StatusClosed
}

func (d *Decoder) Status() audio.Status { return d.status }
