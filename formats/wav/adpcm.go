// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"github.com/emb-audio/audioengine/audio"
	"github.com/emb-audio/audioengine/stream"
)

// Canonical IMA ADPCM step and index tables.
var imaStepTable = [89]int16{
	7, 8, 9, 10, 11, 12, 13, 14, 16, 17, 19, 21, 23, 25, 28, 31, 34, 37, 41, 45,
	50, 55, 60, 66, 73, 80, 88, 97, 107, 118, 130, 143, 157, 173, 190, 209,
	230, 253, 279, 307, 337, 371, 408, 449, 494, 544, 598, 658, 724, 796,
	876, 963, 1060, 1166, 1282, 1411, 1552, 1707, 1878, 2066, 2272, 2499,
	2749, 3024, 3327, 3660, 4026, 4428, 4871, 5358, 5894, 6484, 7132,
	7845, 8630, 9493, 10442, 11487, 12635, 13899, 15289, 16818, 18500,
	20350, 22385, 24623, 27086, 29794, 32767,
}

var imaIndexTable = [16]int8{
	-1, -1, -1, -1, 2, 4, 6, 8,
	-1, -1, -1, -1, 2, 4, 6, 8,
}

// maxBlockSamples bounds the per-block scratch; blocks decoding to more than
// this are truncated.
const maxBlockSamples = 8192

type adpcmState struct {
	predictor int16
	stepIndex uint8
}

// decodeNibble advances one IMA step and returns the new predictor, saturated
// at the s16 bounds.
func (st *adpcmState) decodeNibble(nibble uint8) int16 {
	step := int32(imaStepTable[st.stepIndex])
	diff := step >> 3
	if nibble&1 != 0 {
		diff += step >> 2
	}
	if nibble&2 != 0 {
		diff += step >> 1
	}
	if nibble&4 != 0 {
		diff += step
	}
	if nibble&8 != 0 {
		diff = -diff
	}

	pred := int32(st.predictor) + diff
	if pred > 32767 {
		pred = 32767
	} else if pred < -32768 {
		pred = -32768
	}
	st.predictor = int16(pred)

	idx := int(st.stepIndex) + int(imaIndexTable[nibble&0x0F])
	if idx < 0 {
		idx = 0
	} else if idx > 88 {
		idx = 88
	}
	st.stepIndex = uint8(idx)

	return st.predictor
}

// ADPCMDecoder reads WAV IMA-ADPCM (format 0x11) as mono s16. Decoded blocks
// can exceed the caller's buffer, so a single-block scratch carries the
// remainder across Decode calls.
type ADPCMDecoder struct {
	f    *stream.File
	info fmtInfo

	blocksRead  int64
	totalBlocks int64

	scratch  [maxBlockSamples]int16
	scratchN int // samples decoded into scratch
	scratchP int // read cursor within scratch

	block  []byte
	status audio.Status
}

// NewADPCMDecoder returns a closed IMA-ADPCM decoder.
func NewADPCMDecoder() *ADPCMDecoder { return &ADPCMDecoder{} }

func (d *ADPCMDecoder) Open(f *stream.File) error {
	d.Close()
	info, err := parseContainer(f, wavFormatAdpcm)
	if err != nil {
		return err
	}
	if info.blockAlign == 0 {
		return ErrBadFmtChunk
	}
	if info.samplesPerBlock == 0 {
		// Derive from the block layout: 4 header bytes per channel, then two
		// nibbles per byte, plus the header predictor sample.
		info.samplesPerBlock = (info.blockAlign-4*info.channels)*2/info.channels + 1
	}
	if err := f.SeekTo(info.dataOffset); err != nil {
		return err
	}
	d.f = f
	d.info = info
	d.totalBlocks = info.dataSize / int64(info.blockAlign)
	d.blocksRead = 0
	d.scratchN, d.scratchP = 0, 0
	d.status = audio.StatusReady
	return nil
}

func (d *ADPCMDecoder) Decode(dst []int16) int {
	if d.f == nil || (d.status != audio.StatusReady && d.status != audio.StatusPlaying) {
		return 0
	}
	d.status = audio.StatusPlaying

	total := 0

	// Remainder from the previous block first.
	if d.scratchP < d.scratchN {
		n := copy(dst, d.scratch[d.scratchP:d.scratchN])
		d.scratchP += n
		total += n
		if d.scratchP >= d.scratchN {
			d.scratchN, d.scratchP = 0, 0
		}
	}

	for total < len(dst) {
		if d.blocksRead >= d.totalBlocks {
			if total == 0 {
				d.status = audio.StatusClosed
			}
			break
		}
		blockSamples := d.decodeBlock()
		if blockSamples == 0 {
			if total == 0 {
				d.status = audio.StatusClosed
			}
			break
		}
		n := copy(dst[total:], d.scratch[:blockSamples])
		total += n
		if n < blockSamples {
			d.scratchP = n
			d.scratchN = blockSamples
			break
		}
	}
	return total
}

// decodeBlock reads and decodes one block into the scratch buffer, returning
// the number of mono samples produced.
func (d *ADPCMDecoder) decodeBlock() int {
	if cap(d.block) < d.info.blockAlign {
		d.block = make([]byte, d.info.blockAlign)
	}
	block := d.block[:d.info.blockAlign]
	n, _ := d.f.Read(block)
	if n < d.info.blockAlign {
		return 0
	}
	d.blocksRead++

	var states [2]adpcmState
	chans := d.info.channels
	if chans > 2 {
		chans = 2
	}
	for c := 0; c < chans; c++ {
		off := c * 4
		states[c].predictor = int16(uint16(block[off]) | uint16(block[off+1])<<8)
		states[c].stepIndex = block[off+2]
		if states[c].stepIndex > 88 {
			states[c].stepIndex = 88
		}
	}

	out := 0
	// First output sample is the header predictor.
	if d.info.channels == 1 {
		d.scratch[out] = states[0].predictor
	} else {
		d.scratch[out] = int16((int32(states[0].predictor) + int32(states[1].predictor)) / 2)
	}
	out++

	dataStart := 4 * d.info.channels
	if d.info.channels == 1 {
		for i := dataStart; i < len(block) && out < maxBlockSamples; i++ {
			b := block[i]
			d.scratch[out] = states[0].decodeNibble(b & 0x0F)
			out++
			if out < maxBlockSamples {
				d.scratch[out] = states[0].decodeNibble(b >> 4)
				out++
			}
		}
		return out
	}

	// Stereo: the block interleaves 4-byte chunks per channel; decoded pairs
	// are averaged into mono.
	pos := dataStart
	for pos+8 <= len(block) && out < maxBlockSamples {
		var ch0, ch1 [8]int16
		for b := 0; b < 4; b++ {
			by := block[pos]
			pos++
			ch0[b*2] = states[0].decodeNibble(by & 0x0F)
			ch0[b*2+1] = states[0].decodeNibble(by >> 4)
		}
		for b := 0; b < 4; b++ {
			by := block[pos]
			pos++
			ch1[b*2] = states[1].decodeNibble(by & 0x0F)
			ch1[b*2+1] = states[1].decodeNibble(by >> 4)
		}
		for j := 0; j < 8 && out < maxBlockSamples; j++ {
			d.scratch[out] = int16((int32(ch0[j]) + int32(ch1[j])) / 2)
			out++
		}
	}
	return out
}

func (d *ADPCMDecoder) Seek(sec int) {
	if d.f == nil || d.info.blockAlign == 0 || d.info.samplesPerBlock == 0 {
		return
	}
	if sec < 0 {
		sec = 0
	}
	target := int64(sec) * int64(d.info.sampleRate) / int64(d.info.samplesPerBlock)
	if target >= d.totalBlocks {
		target = d.totalBlocks - 1
		if target < 0 {
			target = 0
		}
	}
	d.blocksRead = target
	d.scratchN, d.scratchP = 0, 0
	d.f.SeekTo(d.info.dataOffset + target*int64(d.info.blockAlign))
	if d.status == audio.StatusClosed {
		d.status = audio.StatusReady
	}
}

func (d *ADPCMDecoder) Position() int {
	if d.info.sampleRate == 0 || d.info.samplesPerBlock == 0 {
		return 0
	}
	return int(d.blocksRead * int64(d.info.samplesPerBlock) / int64(d.info.sampleRate))
}

func (d *ADPCMDecoder) Duration() int {
	if d.info.sampleRate == 0 || d.info.samplesPerBlock == 0 {
		return 0
	}
	return int(d.totalBlocks * int64(d.info.samplesPerBlock) / int64(d.info.sampleRate))
}

func (d *ADPCMDecoder) SampleRate() int { return d.info.sampleRate }

func (d *ADPCMDecoder) Close() {
	d.f = nil
	d.blocksRead = 0
	d.scratchN, d.scratchP = 0, 0
	d.status = audio.StatusClosed
}

func (d *ADPCMDecoder) Status() audio.Status { return d.status }
