// SPDX-License-Identifier: EPL-2.0

// Package hw is the hardware layer of the playback engine: a fixed-size
// single-producer/single-consumer sample ring with blocking write
// acquisition, fade-on-flush and a consumer that drains at wall-clock rate.
//
// The producer (the manager's pipeline tick) acquires a two-segment writable
// region, resamples directly into it and commits:
//
//	wr := ring.AcquireWrite(need, 100*time.Millisecond)
//	if wr.Cap() == 0 {
//	    return // timed out, try again next tick
//	}
//	written := resampler.Process(block, wr.A, wr.B)
//	ring.CommitWrite(written)
//
// The write and read indices are atomics with one sentinel slot keeping a
// full ring distinguishable from an empty one; used is always within
// [0, RingSize-1].
//
// On host the built-in drainer discards one millisecond of audio per tick,
// emulating a DMA-driven codec. Real sinks use StartExternal plus Consume and
// advance the read index themselves.
package hw
