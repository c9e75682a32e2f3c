// SPDX-License-Identifier: EPL-2.0

package audio

// Algorithm selects the interpolation mode of the Resampler.
type Algorithm uint8

const (
	Nearest Algorithm = iota
	Linear
)

// Resampler converts a mono s16 block from one sample rate to another using a
// fixed-point Q16 phase accumulator. It writes into a split destination (two
// segments of a ring's writable region) without an intermediate buffer.
//
// All arithmetic fits in signed 32 bits: the sample difference is within
// ±65535 and the interpolation fraction is at most 32767.
type Resampler struct {
	inRate    int
	outRate   int
	phaseStep uint64
	alg       Algorithm
}

// NewResampler returns a linear-interpolation resampler at the default rates.
func NewResampler() *Resampler {
	r := &Resampler{alg: Linear}
	r.SetRates(0, 0)
	return r
}

// SetAlgorithm switches between Linear and Nearest interpolation.
func (r *Resampler) SetAlgorithm(alg Algorithm) { r.alg = alg }

// SetRates configures the conversion. A zero inRate defaults to 44100, a zero
// outRate to 128000. The Q16 phase step is precomputed here so Process stays
// free of divisions.
func (r *Resampler) SetRates(inRate, outRate int) {
	if inRate == 0 {
		inRate = 44100
	}
	if outRate == 0 {
		outRate = 128000
	}
	r.inRate = inRate
	r.outRate = outRate
	r.phaseStep = (uint64(inRate) << 16) / uint64(outRate)
}

// OutputLength returns ceil(inLen * outRate / inRate), the number of output
// samples Process would produce for inLen input samples given unlimited
// destination capacity. Equals inLen when the rates match.
func (r *Resampler) OutputLength(inLen int) int {
	if r.inRate == 0 {
		return inLen
	}
	return int((uint64(inLen)*uint64(r.outRate) + uint64(r.inRate) - 1) / uint64(r.inRate))
}

// Process resamples src into dst1 then dst2, returning the number of samples
// written: min(OutputLength(len(src)), len(dst1)+len(dst2)).
//
// Phase accumulator layout: idx = phase>>16 is the source index, frac =
// (phase&0xFFFF)>>1 is a 15-bit fraction in [0..32767]. Linear mode emits
// src[idx] + (src[idx+1]-src[idx])*frac>>15 and falls back to nearest at the
// block boundary.
func (r *Resampler) Process(src []int16, dst1, dst2 []int16) int {
	if len(src) == 0 {
		return 0
	}
	outTotal := r.OutputLength(len(src))
	if maxOut := len(dst1) + len(dst2); outTotal > maxOut {
		outTotal = maxOut
	}

	if r.inRate == r.outRate {
		n := copy(dst1, src[:outTotal])
		if n < outTotal {
			copy(dst2, src[n:outTotal])
		}
		return outTotal
	}

	var phase uint64
	for i := 0; i < outTotal; i++ {
		idx := int(phase >> 16)

		var sample int16
		if r.alg == Linear && idx+1 < len(src) {
			frac := int32(phase&0xFFFF) >> 1
			diff := int32(src[idx+1]) - int32(src[idx])
			sample = int16(int32(src[idx]) + (diff*frac)>>15)
		} else {
			if idx >= len(src) {
				idx = len(src) - 1
			}
			sample = src[idx]
		}

		if i < len(dst1) {
			dst1[i] = sample
		} else {
			dst2[i-len(dst1)] = sample
		}
		phase += r.phaseStep
	}
	return outTotal
}
