// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"github.com/emb-audio/audioengine/audio"
	"github.com/emb-audio/audioengine/stream"
)

// PCMDecoder reads 8/16/24/32-bit PCM WAV data as mono s16, downmixing any
// channel count by arithmetic mean.
type PCMDecoder struct {
	f      *stream.File
	info   fmtInfo
	read   int64 // bytes consumed from the data chunk
	status audio.Status
	raw    []byte
}

// NewPCMDecoder returns a closed PCM decoder.
func NewPCMDecoder() *PCMDecoder { return &PCMDecoder{} }

func (d *PCMDecoder) Open(f *stream.File) error {
	d.Close()
	info, err := parseContainer(f, wavFormatPCM)
	if err != nil {
		return err
	}
	switch info.bitsPerSample {
	case 8, 16, 24, 32:
	default:
		return ErrBadFmtChunk
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

func (d *PCMDecoder) bytesPerFrame() int {
	return d.info.channels * d.info.bitsPerSample / 8
}

func (d *PCMDecoder) Decode(dst []int16) int {
	if d.f == nil || (d.status != audio.StatusReady && d.status != audio.StatusPlaying) {
		return 0
	}
	d.status = audio.StatusPlaying

	bpf := d.bytesPerFrame()
	frames := len(dst)
	if left := (d.info.dataSize - d.read) / int64(bpf); int64(frames) > left {
		frames = int(left)
	}
	if frames == 0 {
		d.status = audio.StatusClosed
		return 0
	}

	need := frames * bpf
	if cap(d.raw) < need {
		d.raw = make([]byte, need)
	}
	n, _ := d.f.Read(d.raw[:need])
	frames = n / bpf
	if frames == 0 {
		d.status = audio.StatusClosed
		return 0
	}
	d.read += int64(frames * bpf)

	bytesPerSample := d.info.bitsPerSample / 8
	for i := 0; i < frames; i++ {
		frame := d.raw[i*bpf:]
		sum := int32(0)
		for ch := 0; ch < d.info.channels; ch++ {
			s := frame[ch*bytesPerSample:]
			var v int32
			switch d.info.bitsPerSample {
			case 8:
				v = (int32(s[0]) - 128) << 8
			case 16:
				v = int32(int16(uint16(s[0]) | uint16(s[1])<<8))
			case 24:
				v = int32(uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16)
				if v&0x800000 != 0 {
					v |= ^int32(0xFFFFFF)
				}
				v >>= 8
			case 32:
				v = int32(uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16 | uint32(s[3])<<24)
				v >>= 16
			}
			sum += v
		}
		dst[i] = int16(sum / int32(d.info.channels))
	}
	return frames
}

func (d *PCMDecoder) Seek(sec int) {
	if d.f == nil {
		return
	}
	if sec < 0 {
		sec = 0
	}
	pos := int64(sec) * int64(d.info.sampleRate) * int64(d.bytesPerFrame())
	if pos > d.info.dataSize {
		pos = d.info.dataSize
	}
	d.read = pos
	d.f.SeekTo(d.info.dataOffset + pos)
	if d.status == audio.StatusClosed {
		d.status = audio.StatusReady
	}
}

func (d *PCMDecoder) Position() int {
	bpf := d.bytesPerFrame()
	if bpf == 0 || d.info.sampleRate == 0 {
		return 0
	}
	return int(d.read / int64(bpf) / int64(d.info.sampleRate))
}

func (d *PCMDecoder) Duration() int {
	bpf := d.bytesPerFrame()
	if bpf == 0 || d.info.sampleRate == 0 {
		return 0
	}
	return int(d.info.dataSize / int64(bpf) / int64(d.info.sampleRate))
}

func (d *PCMDecoder) SampleRate() int { return d.info.sampleRate }

func (d *PCMDecoder) Close() {
	d.f = nil
	d.read = 0
	d.status = audio.StatusClosed
}

func (d *PCMDecoder) Status() audio.Status { return d.status }
