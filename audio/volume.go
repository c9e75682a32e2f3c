// SPDX-License-Identifier: EPL-2.0

package audio

// VolumeTable maps a 0..10 volume setting to a Q15 scale factor. Indices 0..6
// attenuate; 7..10 are passthrough (0x7FFF).
var VolumeTable = [11]int16{
	0,
	1638,
	3277,
	6554,
	9830,
	13107,
	19661,
	0x7FFF,
	0x7FFF,
	0x7FFF,
	0x7FFF,
}

// MaxVolume is the highest valid volume setting.
const MaxVolume = 10

// ScaleQ15 multiplies buf in place by a Q15 scale factor, saturating at the
// s16 bounds.
func ScaleQ15(buf []int16, scale int16) {
	for i, v := range buf {
		p := (int32(v) * int32(scale)) >> 15
		if p > 32767 {
			p = 32767
		} else if p < -32768 {
			p = -32768
		}
		buf[i] = int16(p)
	}
}
