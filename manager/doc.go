// SPDX-License-Identifier: EPL-2.0

// Package manager implements the audio manager: a single-consumer,
// command-driven state machine owning source routing, the play queue, the
// decoder slot and the pipeline tick.
//
// # Threading model
//
// One worker goroutine is the sole mutator of engine state. Callers from any
// goroutine submit commands through a bounded mailbox (depth 32; a full
// mailbox blocks the sender up to 50 ms, then drops the command) and read
// atomically published whole-struct snapshots (PlayerStatus, CurrentSource,
// QueueLen). Commands from one caller are observed in send order; there is no
// global order across callers.
//
// Each worker pass drains the mailbox, updates the priority router and
// publishes status. When a source is live the worker then runs one pipeline
// tick: decode up to 1024 mono samples (or pull from the source's feed
// callback), scale by the Q15 volume table for settings below 7, resample to
// the sink rate and write straight into the ring's two-segment writable
// region. With no live source the worker sleeps 50 ms between passes.
//
// # Routing
//
// The router picks the highest-priority source with wantPlay set (Diag=3,
// AdcDirect=2, Player=FrontExternal=1; equal priorities keep the earlier
// enum id). A switch fades and flushes the ring; a preempted player is
// paused, not stopped, and resumes when routing falls back.
//
// # Track lifecycle
//
// startNextTrack pops queue entries until one opens: stream open, codec
// detection, decoder construction and open, optional start-offset seek.
// Failures are logged and the next entry is tried; an exhausted queue stops
// the player. End of stream simply advances to the next track. Errors never
// propagate to callers.
package manager
