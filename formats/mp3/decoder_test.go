// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"testing"

	"github.com/emb-audio/audioengine/audio"
	"github.com/emb-audio/audioengine/internal/audiotest"
)

func TestDecoder_OpenGarbageFails(t *testing.T) {
	t.Parallel()

	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i % 13)
	}
	f := openFixture(t, "noise.mp3", data)

	d := NewDecoder()
	if err := d.Open(f); err == nil {
		t.Error("Open() of non-MP3 data succeeded")
	}
	if d.Status() != audio.StatusClosed {
		t.Errorf("Status() after failed Open = %v, want closed", d.Status())
	}
}

func TestDecoder_ClosedDecodeReturnsZero(t *testing.T) {
	t.Parallel()

	d := NewDecoder()
	if n := d.Decode(make([]int16, 64)); n != 0 {
		t.Errorf("Decode() on closed decoder = %d, want 0", n)
	}
	if d.Position() != 0 || d.Duration() != 0 {
		t.Errorf("closed decoder position/duration = %d/%d, want 0/0", d.Position(), d.Duration())
	}
}

func TestDecoder_EstimatorSeedIsExactWithXing(t *testing.T) {
	t.Parallel()

	// Open seeds its duration from this estimator, which runs before the
	// frame decoder; with a Xing header it
	// produces the exact duration even though the payloads are silent
	// filler the decoder may reject.
	f := openFixture(t, "xing.mp3", audiotest.BuildMP3CBR(5, 400))

	est := EstimateDuration(f)
	want := 400 * audiotest.MP3SamplesPerFrame / audiotest.MP3SampleRate
	if est.DurationSec != want || !est.Exact {
		t.Fatalf("EstimateDuration = %+v, want exact %d s", est, want)
	}
}
