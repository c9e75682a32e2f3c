// SPDX-License-Identifier: EPL-2.0

package audioengine

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/emb-audio/audioengine/internal/audiotest"
	"github.com/emb-audio/audioengine/manager"
)

func waitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestEngine_OwnedInstancePlayback(t *testing.T) {
	t.Parallel()

	eng := NewEngine(zerolog.Nop())
	defer eng.Close()
	eng.Manager().SetSampleRate(8000)

	track := audiotest.WriteWavPCM16(t, t.TempDir(), "chime.wav", 8000, 1,
		audiotest.Sine(4000, 440, 8000, 0.3))
	eng.Manager().AddFile(track, 0, manager.OutputFront)

	waitFor(t, 2*time.Second, "chime playing", func() bool {
		st := eng.Manager().PlayerStatus()
		return st.Playing && st.Filename == "chime.wav" && st.FileReady
	})
	waitFor(t, 5*time.Second, "chime finished", func() bool {
		return !eng.Manager().PlayerStatus().Playing
	})
}

func TestEngine_ExternalDrain(t *testing.T) {
	t.Parallel()

	eng := NewEngineExternal(zerolog.Nop())
	defer eng.Close()
	eng.Manager().SetSampleRate(8000)

	track := audiotest.WriteWavPCM16(t, t.TempDir(), "c.wav", 8000, 1,
		audiotest.Sine(800, 440, 8000, 0.3))
	eng.Manager().AddFile(track, 0, manager.OutputFront)

	// Pull the decoded audio out of the ring ourselves, like a device would.
	got := 0
	buf := make([]int16, 512)
	deadline := time.Now().Add(3 * time.Second)
	for got < 800 && time.Now().Before(deadline) {
		n := eng.Ring().Consume(buf)
		got += n
		if n == 0 {
			time.Sleep(time.Millisecond)
		}
	}
	if got < 800 {
		t.Fatalf("consumed %d samples, want at least 800", got)
	}
}

// The package-level facade owns a process-wide singleton; its entry points are
// exercised in a single test to keep ordering deterministic.
func TestFacade_Lifecycle(t *testing.T) {
	Init()
	Init() // idempotent

	SetSampleRateParam(4)  // out of range: falls back to 128 kHz
	SetSampleRateParam(1)  // 96 kHz
	SetVolume(PipePlayer, 20) // clamps to 10
	VolumeChanged()

	if got := CurrentPipe(); got != PipeDisabled {
		t.Errorf("CurrentPipe() = %v, want PipeDisabled", got)
	}

	st := PlayerStatus()
	if st.Playing || st.Pause || st.FileReady {
		t.Errorf("idle status = %+v, want all-clear", st)
	}
	if !st.Front {
		t.Error("Front flag = false; the legacy API always reports front")
	}

	track := audiotest.WriteWavPCM16(t, t.TempDir(), "f.wav", 8000, 1,
		audiotest.Sine(16000, 300, 8000, 0.3))
	PlayerEnqueueFile(track, true)

	waitFor(t, 3*time.Second, "facade playback", func() bool {
		st := PlayerStatus()
		return st.Playing && st.Filename == "f.wav"
	})
	if got := CurrentPipe(); got != PipePlayer {
		t.Errorf("CurrentPipe() = %v, want PipePlayer", got)
	}

	PlayerPause()
	waitFor(t, time.Second, "paused", func() bool { return PlayerStatus().Pause })
	PlayerPlay()
	waitFor(t, time.Second, "resumed", func() bool { return PlayerStatus().Playing })

	PlayerRewind()
	waitFor(t, time.Second, "rewound to zero", func() bool {
		return PlayerStatus().Position == 0
	})

	PlayerStop()
	waitFor(t, time.Second, "stopped", func() bool {
		st := PlayerStatus()
		return !st.Playing && !st.Pause && CurrentPipe() == PipeDisabled
	})

	if !SelectPipe(PipeDisabled) {
		t.Error("SelectPipe(PipeDisabled) = false, want true")
	}
}
