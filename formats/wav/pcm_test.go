// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"testing"

	"github.com/emb-audio/audioengine/audio"
	"github.com/emb-audio/audioengine/internal/audiotest"
	"github.com/emb-audio/audioengine/stream"
)

func openFile(t *testing.T, path string) *stream.File {
	t.Helper()
	f := stream.New(0)
	if err := f.Open(path); err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}
	t.Cleanup(f.Close)
	return f
}

func decodeAll(d audio.Decoder, blockSize int) []int16 {
	var out []int16
	buf := make([]int16, blockSize)
	for {
		n := d.Decode(buf)
		if n == 0 {
			return out
		}
		out = append(out, buf[:n]...)
	}
}

func TestPCMDecoder_Mono16(t *testing.T) {
	t.Parallel()

	want := audiotest.Ramp(800, -20000, 20000)
	path := audiotest.WriteWavPCM16(t, t.TempDir(), "mono.wav", 8000, 1, want)

	d := NewPCMDecoder()
	if err := d.Open(openFile(t, path)); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if d.SampleRate() != 8000 {
		t.Errorf("SampleRate() = %d, want 8000", d.SampleRate())
	}
	if d.Status() != audio.StatusReady {
		t.Errorf("Status() = %v, want ready", d.Status())
	}

	got := decodeAll(d, 256)
	if len(got) != len(want) {
		t.Fatalf("decoded %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
	if d.Status() != audio.StatusClosed {
		t.Errorf("Status() after EOF = %v, want closed", d.Status())
	}
}

func TestPCMDecoder_StereoDownmix(t *testing.T) {
	t.Parallel()

	// L=100, R=300 constant: the mono mean is 200.
	frames := 400
	interleaved := make([]int16, frames*2)
	for i := 0; i < frames; i++ {
		interleaved[i*2] = 100
		interleaved[i*2+1] = 300
	}
	path := audiotest.WriteWavPCM16(t, t.TempDir(), "stereo.wav", 44100, 2, interleaved)

	d := NewPCMDecoder()
	if err := d.Open(openFile(t, path)); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	got := decodeAll(d, 128)
	if len(got) != frames {
		t.Fatalf("decoded %d samples, want %d", len(got), frames)
	}
	for i, s := range got {
		if s != 200 {
			t.Fatalf("sample %d = %d, want 200", i, s)
		}
	}
}

func TestPCMDecoder_8Bit(t *testing.T) {
	t.Parallel()

	payload := []byte{0, 128, 255, 192}
	want := []int16{-32768, 0, 32512, 16384}
	data := audiotest.BuildWav(1, 1, 8000, 8, 1, nil, payload)
	path := audiotest.WriteFile(t, t.TempDir(), "u8.wav", data)

	d := NewPCMDecoder()
	if err := d.Open(openFile(t, path)); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	got := decodeAll(d, 16)
	if len(got) != len(want) {
		t.Fatalf("decoded %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestPCMDecoder_24Bit(t *testing.T) {
	t.Parallel()

	// Little-endian 24-bit samples: 0x7FFFFF, 0x800000, -1, 0x000100.
	payload := []byte{
		0xFF, 0xFF, 0x7F,
		0x00, 0x00, 0x80,
		0xFF, 0xFF, 0xFF,
		0x00, 0x01, 0x00,
	}
	want := []int16{32767, -32768, -1, 1}
	data := audiotest.BuildWav(1, 1, 8000, 24, 3, nil, payload)
	path := audiotest.WriteFile(t, t.TempDir(), "s24.wav", data)

	d := NewPCMDecoder()
	if err := d.Open(openFile(t, path)); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	got := decodeAll(d, 16)
	if len(got) != len(want) {
		t.Fatalf("decoded %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestPCMDecoder_32Bit(t *testing.T) {
	t.Parallel()

	payload := []byte{
		0xFF, 0xFF, 0xFF, 0x7F, // 0x7FFFFFFF -> 32767
		0x00, 0x00, 0x00, 0x80, // -2^31 -> -32768
		0x00, 0x00, 0x01, 0x00, // 0x10000 -> 1
	}
	want := []int16{32767, -32768, 1}
	data := audiotest.BuildWav(1, 1, 8000, 32, 4, nil, payload)
	path := audiotest.WriteFile(t, t.TempDir(), "s32.wav", data)

	d := NewPCMDecoder()
	if err := d.Open(openFile(t, path)); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	got := decodeAll(d, 16)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestPCMDecoder_SeekAndPosition(t *testing.T) {
	t.Parallel()

	samples := audiotest.Sine(16000, 440, 8000, 0.5) // 2 seconds
	path := audiotest.WriteWavPCM16(t, t.TempDir(), "twosec.wav", 8000, 1, samples)

	d := NewPCMDecoder()
	if err := d.Open(openFile(t, path)); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if d.Duration() != 2 {
		t.Errorf("Duration() = %d, want 2", d.Duration())
	}

	d.Seek(1)
	if d.Position() != 1 {
		t.Errorf("Position() after Seek(1) = %d, want 1", d.Position())
	}
	rest := decodeAll(d, 1024)
	if len(rest) != 8000 {
		t.Errorf("decoded %d samples after Seek(1), want 8000", len(rest))
	}

	// Past-the-end seek clamps to EOF.
	d.Seek(100)
	if d.Position() != 2 {
		t.Errorf("Position() after Seek(100) = %d, want clamp to 2", d.Position())
	}
}

func TestPCMDecoder_RejectsNonPCM(t *testing.T) {
	t.Parallel()

	data := audiotest.BuildWav(6, 1, 8000, 8, 1, nil, make([]byte, 32))
	path := audiotest.WriteFile(t, t.TempDir(), "alaw.wav", data)

	d := NewPCMDecoder()
	err := d.Open(openFile(t, path))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Open() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestPCMDecoder_RejectsGarbage(t *testing.T) {
	t.Parallel()

	path := audiotest.WriteFile(t, t.TempDir(), "junk.wav", []byte("this is not a wav file at all"))
	d := NewPCMDecoder()
	if err := d.Open(openFile(t, path)); err == nil {
		t.Error("Open() of garbage succeeded")
	}
}
