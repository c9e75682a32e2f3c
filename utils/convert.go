// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 converts a [-1, 1] float sample to s16, clamping out-of-range
// input. The positive scale is 32767 to avoid overflow at exactly 1.0.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	return int16(x * 32767.0)
}

// Int16ToFloat32 converts an s16 sample to a [-1, 1) float.
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}
