// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"testing"

	"github.com/emb-audio/audioengine/internal/audiotest"
	"github.com/emb-audio/audioengine/stream"
)

func openFixture(t *testing.T, name string, data []byte) *stream.File {
	t.Helper()
	path := audiotest.WriteFile(t, t.TempDir(), name, data)
	f := stream.New(0)
	if err := f.Open(path); err != nil {
		t.Fatalf("Open(%s): %v", name, err)
	}
	t.Cleanup(f.Close)
	return f
}

func TestParseFrameHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		hdr   []byte
		valid bool
	}{
		{"mpeg1 layer3 128k 44100", []byte{0xFF, 0xFB, 0x90, 0x00}, true},
		{"no sync", []byte{0x00, 0xFB, 0x90, 0x00}, false},
		{"reserved version", []byte{0xFF, 0xEB, 0x90, 0x00}, false},
		{"reserved layer", []byte{0xFF, 0xF9, 0x90, 0x00}, false},
		{"free bitrate", []byte{0xFF, 0xFB, 0x00, 0x00}, false},
		{"bad bitrate index", []byte{0xFF, 0xFB, 0xF0, 0x00}, false},
		{"bad samplerate index", []byte{0xFF, 0xFB, 0x9C, 0x00}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fi := parseFrameHeader(tt.hdr)
			if fi.valid != tt.valid {
				t.Errorf("valid = %v, want %v", fi.valid, tt.valid)
			}
		})
	}
}

func TestParseFrameHeader_Fields(t *testing.T) {
	t.Parallel()

	fi := parseFrameHeader([]byte{0xFF, 0xFB, 0x90, 0x00})
	if !fi.valid {
		t.Fatal("canonical header rejected")
	}
	if fi.bitrate != 128000 {
		t.Errorf("bitrate = %d, want 128000", fi.bitrate)
	}
	if fi.sampleRate != 44100 {
		t.Errorf("sampleRate = %d, want 44100", fi.sampleRate)
	}
	if fi.samplesPerFrame != 1152 {
		t.Errorf("samplesPerFrame = %d, want 1152", fi.samplesPerFrame)
	}
	if fi.channels != 2 {
		t.Errorf("channels = %d, want 2", fi.channels)
	}
	if fi.frameSize != audiotest.MP3FrameSize {
		t.Errorf("frameSize = %d, want %d", fi.frameSize, audiotest.MP3FrameSize)
	}

	// Mono flag.
	fi = parseFrameHeader([]byte{0xFF, 0xFB, 0x90, 0xC0})
	if fi.channels != 1 {
		t.Errorf("mono header channels = %d, want 1", fi.channels)
	}

	// MPEG2 Layer 3 at 22050 Hz uses the low-rate tables.
	fi = parseFrameHeader([]byte{0xFF, 0xF3, 0x90, 0x00})
	if !fi.valid || fi.sampleRate != 22050 || fi.samplesPerFrame != 576 {
		t.Errorf("mpeg2 header = %+v, want 22050 Hz / 576 spf", fi)
	}
}

func TestEstimateDuration_XingExact(t *testing.T) {
	t.Parallel()

	// Five physical frames, but the Xing field declares 400: the estimator
	// must trust the header.
	data := audiotest.BuildMP3CBR(5, 400)
	f := openFixture(t, "vbr.mp3", data)

	got := EstimateDuration(f)
	want := 400 * audiotest.MP3SamplesPerFrame / audiotest.MP3SampleRate
	if !got.Exact {
		t.Error("Exact = false, want exact Xing duration")
	}
	if got.DurationSec != want {
		t.Errorf("DurationSec = %d, want %d", got.DurationSec, want)
	}
	if got.SampleRate != audiotest.MP3SampleRate {
		t.Errorf("SampleRate = %d, want %d", got.SampleRate, audiotest.MP3SampleRate)
	}
	if got.Channels != 2 {
		t.Errorf("Channels = %d, want 2", got.Channels)
	}
}

func TestEstimateDuration_CBRAverage(t *testing.T) {
	t.Parallel()

	frames := 300
	data := audiotest.BuildMP3CBR(frames, 0)
	f := openFixture(t, "cbr.mp3", data)

	got := EstimateDuration(f)
	if got.Exact {
		t.Error("Exact = true for headerless CBR stream")
	}
	// True duration in seconds, then allow the integer-truncation slack.
	want := frames * audiotest.MP3SamplesPerFrame / audiotest.MP3SampleRate
	if diff := got.DurationSec - want; diff < -1 || diff > 1 {
		t.Errorf("DurationSec = %d, want %d ±1", got.DurationSec, want)
	}
}

func TestEstimateDuration_SkipsID3v2(t *testing.T) {
	t.Parallel()

	data := audiotest.WithID3v2(2048, audiotest.BuildMP3CBR(100, 0))
	f := openFixture(t, "tagged.mp3", data)

	got := EstimateDuration(f)
	if got.SampleRate != audiotest.MP3SampleRate {
		t.Errorf("SampleRate = %d, want %d (tag not skipped?)", got.SampleRate, audiotest.MP3SampleRate)
	}
	want := 100 * audiotest.MP3SamplesPerFrame / audiotest.MP3SampleRate
	if diff := got.DurationSec - want; diff < -1 || diff > 1 {
		t.Errorf("DurationSec = %d, want %d ±1", got.DurationSec, want)
	}
}

func TestEstimateDuration_Garbage(t *testing.T) {
	t.Parallel()

	data := make([]byte, 16384)
	for i := range data {
		data[i] = byte(i % 7)
	}
	f := openFixture(t, "noise.mp3", data)

	got := EstimateDuration(f)
	if got.DurationSec != 0 || got.SampleRate != 0 {
		t.Errorf("EstimateDuration(noise) = %+v, want zero result", got)
	}
}

func TestEstimateDuration_SyncAfterJunk(t *testing.T) {
	t.Parallel()

	// A few junk bytes before the first frame must not defeat the scan.
	data := append([]byte{0x01, 0x02, 0x03, 0x04, 0x05}, audiotest.BuildMP3CBR(100, 0)...)
	f := openFixture(t, "junkfirst.mp3", data)

	got := EstimateDuration(f)
	if got.SampleRate != audiotest.MP3SampleRate {
		t.Errorf("SampleRate = %d, want %d", got.SampleRate, audiotest.MP3SampleRate)
	}
}
