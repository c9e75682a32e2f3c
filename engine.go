// SPDX-License-Identifier: EPL-2.0

package audioengine

import (
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/emb-audio/audioengine/hw"
	"github.com/emb-audio/audioengine/manager"
)

// PipeID mirrors the legacy pipe identifiers of the C API.
type PipeID uint8

const (
	PipeDisabled PipeID = iota
	PipePlayer
	PipeAdcDirect
	PipeFrontExternal
	PipeDiag
)

// Status is the packed player status of the legacy API. Filename is capped at
// 64 bytes, durations are seconds.
type Status struct {
	Filename        string
	Duration        int
	Position        int
	PositionPercent uint8
	FileReady       bool
	Playing         bool
	Pause           bool
	Online          bool
	Front           bool
	PlayAutostarted bool
}

// Engine bundles the hardware ring and the manager. Most integrations use
// the package-level legacy API, which holds a single Engine behind an
// initialization guard; embedders that want explicit ownership construct
// their own.
type Engine struct {
	ring *hw.Ring
	mgr  *manager.Manager
}

// NewEngine creates an engine with a started wall-clock-drained ring.
func NewEngine(log zerolog.Logger) *Engine {
	ring := hw.NewRing(log)
	ring.Start()
	return &Engine{ring: ring, mgr: manager.New(ring, log)}
}

// NewEngineExternal creates an engine whose ring is drained by the caller
// through Ring().Consume, for feeding a real audio device.
func NewEngineExternal(log zerolog.Logger) *Engine {
	ring := hw.NewRing(log)
	ring.StartExternal()
	return &Engine{ring: ring, mgr: manager.New(ring, log)}
}

// Manager exposes the command API of the engine.
func (e *Engine) Manager() *manager.Manager { return e.mgr }

// Ring exposes the hardware ring, mainly for external sinks.
func (e *Engine) Ring() *hw.Ring { return e.ring }

// Close shuts the worker down and stops the ring.
func (e *Engine) Close() {
	e.mgr.Close()
	e.ring.Stop()
}

/* ── Legacy C-style facade ── */

var (
	initOnce sync.Once
	singleton *Engine
)

// Init constructs the process-wide engine. Idempotent; every other facade
// call performs it implicitly.
func Init() {
	initOnce.Do(func() {
		log := zerolog.New(os.Stderr).With().Timestamp().
			Str("component", "audioengine").Logger()
		singleton = NewEngine(log)
	})
}

func inst() *Engine {
	Init()
	return singleton
}

func legacyOutput(front bool) manager.Output {
	if front {
		return manager.OutputFront
	}
	return manager.OutputRear
}

// PlayerEnqueueFile appends a file to the play queue.
func PlayerEnqueueFile(path string, front bool) {
	if path == "" {
		return
	}
	inst().mgr.AddFile(path, 0, legacyOutput(front))
}

// PlayerPlayFileImmediately drops the current track and plays path next,
// preserving the rest of the queue.
func PlayerPlayFileImmediately(path string, front bool) {
	if path == "" {
		return
	}
	inst().mgr.AddFileFront(path, 0, legacyOutput(front))
}

// PlayerPlay starts or resumes playback.
func PlayerPlay() { inst().mgr.Play() }

// PlayerPause pauses playback.
func PlayerPause() { inst().mgr.Pause() }

// PlayerStop stops playback and closes the current track.
func PlayerStop() { inst().mgr.Stop() }

// PlayerForward skips ahead 10 seconds.
func PlayerForward() { inst().mgr.Forward(10) }

// PlayerRewind skips back 10 seconds, clamping at zero.
func PlayerRewind() { inst().mgr.Rewind(10) }

// PlayerStatus fills the packed legacy status struct.
func PlayerStatus() Status {
	e := inst()
	s := e.mgr.PlayerStatus()
	name := s.Filename
	if len(name) > 64 {
		name = name[:64]
	}
	return Status{
		Filename:        name,
		Duration:        s.Duration,
		Position:        s.Position,
		PositionPercent: s.Percent,
		FileReady:       s.FileReady,
		Playing:         s.Playing,
		Pause:           s.Paused,
		Online:          e.mgr.CurrentSource() == manager.SrcAdcDirect,
		// The legacy API always reported front; preserved as-is.
		Front: true,
	}
}

// SelectPipe activates the given source, or deactivates the current one when
// id is PipeDisabled. Always reports success, like the legacy call.
func SelectPipe(id PipeID) bool {
	e := inst()
	if id == PipeDisabled {
		if cur := e.mgr.CurrentSource(); cur != manager.SrcDisabled {
			e.mgr.RequestDeactivate(cur)
		}
		return true
	}
	e.mgr.RequestActivate(manager.SourceID(id))
	return true
}

// CurrentPipe returns the source currently feeding the sink.
func CurrentPipe() PipeID { return PipeID(inst().mgr.CurrentSource()) }

// sampleRateParams maps the legacy rate parameter to sink rates in Hz.
var sampleRateParams = [...]int{128000, 96000, 88200, 176400}

// SetSampleRateParam maps the legacy parameter 0..3 to a sink rate,
// defaulting to 128 kHz for anything else.
func SetSampleRateParam(param int) {
	rate := sampleRateParams[0]
	if param >= 0 && param < len(sampleRateParams) {
		rate = sampleRateParams[param]
	}
	inst().mgr.SetSampleRate(rate)
}

// SetVolume stores a 0..10 volume on a source, clamping out-of-range values.
func SetVolume(id PipeID, vol int) {
	inst().mgr.SetVolume(manager.SourceID(id), vol)
}

// VolumeChanged is a benign no-op kept for legacy callers.
func VolumeChanged() { inst().mgr.VolumeChanged() }
