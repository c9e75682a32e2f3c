// SPDX-License-Identifier: EPL-2.0

// Package audioengine is an embedded-style audio playback engine: it mixes
// between logical sources (a file player, raw ADC capture, an external feed
// and a diagnostic generator) and delivers a single mono 16-bit PCM stream
// to a hardware sample ring at a configured output rate.
//
// # Architecture
//
// A single worker goroutine owns all engine state. Callers submit commands
// through a bounded mailbox and read atomically published snapshots; no other
// cross-goroutine channel exists. The steady-state data path is
//
//	decoder → Q15 volume scale → Q16 resample → SPSC hardware ring
//
// with the resampler writing straight into the ring's two-segment writable
// region.
//
// # Supported formats
//
//   - WAV PCM (8/16/24/32-bit, any channel count) via formats/wav
//   - WAV IMA-ADPCM, A-law, μ-law via formats/wav
//   - MP3 (MPEG 1/2/2.5 Layer 3, ID3v2, Xing/Info) via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//
// # Legacy facade
//
// This package doubles as the shim for the legacy C-style callers: a
// process-wide engine behind an initialization guard and free functions
// mirroring the old entry points.
//
//	audioengine.Init()
//	audioengine.PlayerEnqueueFile("chime.wav", true)
//	audioengine.PlayerPlay()
//	st := audioengine.PlayerStatus()
//
// Embedders that want explicit ownership construct an Engine directly and
// talk to its Manager:
//
//	eng := audioengine.NewEngine(logger)
//	defer eng.Close()
//	eng.Manager().AddFile("track.mp3", 0, manager.OutputFront)
//	eng.Manager().Play()
//
// The subpackages stand alone: audio (decoder contract, resampler, volume),
// stream (buffered file reader), codec (format detection), hw (sample ring)
// and manager (the state machine).
package audioengine
