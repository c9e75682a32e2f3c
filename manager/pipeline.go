// SPDX-License-Identifier: EPL-2.0

package manager

import (
	"github.com/emb-audio/audioengine/audio"
	"github.com/emb-audio/audioengine/codec"
	"github.com/emb-audio/audioengine/hw"
	"github.com/emb-audio/audioengine/formats/mp3"
	"github.com/emb-audio/audioengine/formats/vorbis"
	"github.com/emb-audio/audioengine/formats/wav"
)

// newDecoder maps a detected codec to a fresh decoder, nil for Unknown.
func newDecoder(t codec.Type) audio.Decoder {
	switch t {
	case codec.WavPcm:
		return wav.NewPCMDecoder()
	case codec.WavAdpcm:
		return wav.NewADPCMDecoder()
	case codec.WavAlaw:
		return wav.NewALawDecoder()
	case codec.WavUlaw:
		return wav.NewULawDecoder()
	case codec.Mp3:
		return mp3.NewDecoder()
	case codec.Vorbis:
		return vorbis.NewDecoder()
	}
	return nil
}

// startNextTrack tears down the current track and opens queued entries until
// one plays. Entries that fail to open or detect are logged and skipped; an
// exhausted queue stops the player. The loop is bounded by the queue length.
func (m *Manager) startNextTrack() {
	for {
		m.destroyDecoder()
		m.file.Close()

		e, ok := m.queue.pop()
		if !ok {
			m.state = StateStopped
			m.sources[SrcPlayer].wantPlay = false
			return
		}

		if err := m.file.Open(e.path); err != nil {
			m.log.Warn().Err(err).Str("path", e.path).Msg("open failed, skipping track")
			continue
		}

		t := codec.Detect(m.file)
		d := newDecoder(t)
		if d == nil {
			m.log.Warn().Str("path", e.path).Msg("unknown codec, skipping track")
			continue
		}
		if err := d.Open(m.file); err != nil {
			m.log.Warn().Err(err).Str("path", e.path).Stringer("codec", t).
				Msg("decoder open failed, skipping track")
			continue
		}
		if e.startSec > 0 {
			d.Seek(e.startSec)
		}

		m.decoder = d
		m.state = StatePlaying
		m.sources[SrcPlayer].wantPlay = true
		m.sources[SrcPlayer].output = e.output

		name := m.file.Name()
		if len(name) > maxFilenameLen {
			name = name[:maxFilenameLen]
		}
		m.filename = name

		m.log.Debug().Str("file", name).Stringer("codec", t).
			Int("rate", d.SampleRate()).Int("duration", d.Duration()).
			Msg("track started")
		return
	}
}

// pipelineTick runs one decode → scale → resample → write pass for the
// current source. It is only entered with a non-disabled current source.
func (m *Manager) pipelineTick() {
	srcRate := m.ring.SampleRate()
	var decoded int

	if m.current == SrcPlayer {
		if m.state != StatePlaying || m.decoder == nil {
			return
		}
		decoded = m.decoder.Decode(m.buf[:])
		if decoded == 0 {
			m.startNextTrack()
			return
		}
		srcRate = m.decoder.SampleRate()
	} else {
		feed := m.sources[m.current].feed
		if feed == nil {
			return
		}
		var rate int
		decoded, rate = feed(m.buf[:])
		if decoded == 0 {
			return
		}
		if rate > 0 {
			srcRate = rate
		}
	}

	if vol := m.sources[m.current].volume; vol < 7 {
		audio.ScaleQ15(m.buf[:decoded], audio.VolumeTable[vol])
	}

	m.resamp.SetRates(srcRate, m.ring.SampleRate())
	outLen := m.resamp.OutputLength(decoded)
	if outLen == 0 {
		return
	}

	// A full upsample of a block can exceed what an empty ring holds; asking
	// for more than RingSize-1 would starve forever.
	need := outLen
	if need > hw.RingSize-1 {
		need = hw.RingSize - 1
	}
	wr := m.ring.AcquireWrite(need, acquireTimeout)
	if wr.Cap() == 0 {
		// Ring timeout: yield this round, the decoder holds its position.
		return
	}
	written := m.resamp.Process(m.buf[:decoded], wr.A, wr.B)
	m.ring.CommitWrite(written)
}
