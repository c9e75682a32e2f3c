// SPDX-License-Identifier: EPL-2.0

package hw

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	// RingSize is the capacity of the sample ring. One slot stays unused as
	// the full/empty sentinel, so at most RingSize-1 samples are buffered.
	RingSize = 16384

	// FadeSamples is the length of the linear ramp applied by Flush.
	FadeSamples = 200

	// DefaultSampleRate is the sink rate used until SetSampleRate is called.
	DefaultSampleRate = 128000

	// tick is the granularity of the drain loop and of AcquireWrite waits.
	tick = time.Millisecond
)

// WriteRegion describes up to two contiguous writable segments of the ring,
// wrapping at the ring boundary. An empty region means the wait timed out.
type WriteRegion struct {
	A []int16
	B []int16
}

// Cap returns the total writable capacity of the region.
func (w WriteRegion) Cap() int { return len(w.A) + len(w.B) }

// Ring is the single-producer/single-consumer sample ring feeding the
// hardware sink. The worker writes through AcquireWrite/CommitWrite; the
// consumer advances the read index, either the built-in wall-clock drainer
// (emulating a DMA-driven codec on host) or an external sink calling Consume.
type Ring struct {
	buf [RingSize]int16

	writePos   atomic.Uint32
	readPos    atomic.Uint32
	sampleRate atomic.Uint32
	started    atomic.Bool

	drainOnce sync.Once
	log       zerolog.Logger
}

// NewRing returns a stopped ring at the default sink rate.
func NewRing(log zerolog.Logger) *Ring {
	r := &Ring{log: log}
	r.sampleRate.Store(DefaultSampleRate)
	return r
}

// SetSampleRate changes the sink rate; zero restores the default. The drain
// loop picks the new rate up on its next tick.
func (r *Ring) SetSampleRate(rate int) {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	r.sampleRate.Store(uint32(rate))
}

// SampleRate returns the configured sink rate.
func (r *Ring) SampleRate() int { return int(r.sampleRate.Load()) }

// Start resets both indices and launches the wall-clock drainer if it is not
// running yet. Idempotent while started.
func (r *Ring) Start() {
	if r.started.Load() {
		return
	}
	r.writePos.Store(0)
	r.readPos.Store(0)
	r.started.Store(true)
	r.drainOnce.Do(func() { go r.drain() })
}

// StartExternal resets the ring and marks it started without launching the
// drainer; the read index is then advanced by an external consumer through
// Consume. On target hardware this is the DMA completion handler.
func (r *Ring) StartExternal() {
	if r.started.Load() {
		return
	}
	r.writePos.Store(0)
	r.readPos.Store(0)
	r.started.Store(true)
}

// Stop clears the started flag; the drainer idles and writers unblock.
func (r *Ring) Stop() { r.started.Store(false) }

// Started reports whether the ring is accepting samples.
func (r *Ring) Started() bool { return r.started.Load() }

// Used returns the number of buffered samples.
func (r *Ring) Used() int {
	w := r.writePos.Load()
	rd := r.readPos.Load()
	if w >= rd {
		return int(w - rd)
	}
	return int(RingSize - rd + w)
}

// FreeSpace returns how many samples can be written without overrunning the
// reader.
func (r *Ring) FreeSpace() int { return RingSize - 1 - r.Used() }

// AcquireWrite blocks in tick increments until at least minSamples of free
// space are available, the timeout expires or the ring is stopped. It returns
// a region covering all currently free space; an empty region signals the
// caller to yield.
func (r *Ring) AcquireWrite(minSamples int, timeout time.Duration) WriteRegion {
	var wr WriteRegion
	deadline := time.Now().Add(timeout)
	for r.FreeSpace() < minSamples {
		if !r.started.Load() || !time.Now().Before(deadline) {
			return wr
		}
		time.Sleep(tick)
	}

	w := r.writePos.Load()
	avail := r.FreeSpace()
	if avail == 0 {
		return wr
	}

	toEnd := int(RingSize - w)
	if toEnd >= avail {
		wr.A = r.buf[w : int(w)+avail]
	} else {
		wr.A = r.buf[w:]
		wr.B = r.buf[:avail-toEnd]
	}
	return wr
}

// CommitWrite publishes written samples by advancing the write index.
func (r *Ring) CommitWrite(written int) {
	w := r.writePos.Load()
	r.writePos.Store((w + uint32(written)) % RingSize)
}

// Flush discards all pending samples, optionally ramping the tail of the
// written data down first so a source switch lands as a soft cut rather than
// a click. The ramp scales the last FadeSamples samples in place by
// (FadeSamples-i)/FadeSamples, then write is reset onto read.
func (r *Ring) Flush(fadeOut bool) {
	if fadeOut {
		w := r.writePos.Load()
		for i := 0; i < FadeSamples && i < RingSize; i++ {
			idx := (w + RingSize - uint32(i+1)) % RingSize
			scale := int32(FadeSamples - i)
			r.buf[idx] = int16(int32(r.buf[idx]) * scale / FadeSamples)
		}
	}
	r.writePos.Store(r.readPos.Load())
	r.log.Debug().Bool("fade", fadeOut).Msg("ring flushed")
}

// Consume copies up to len(dst) buffered samples into dst and advances the
// read index, returning the count. Only for externally drained rings; the
// built-in drainer discards samples itself.
func (r *Ring) Consume(dst []int16) int {
	avail := r.Used()
	n := len(dst)
	if n > avail {
		n = avail
	}
	rd := r.readPos.Load()
	for i := 0; i < n; i++ {
		dst[i] = r.buf[(rd+uint32(i))%RingSize]
	}
	r.readPos.Store((rd + uint32(n)) % RingSize)
	return n
}

// drain models the hardware consumer: every tick it discards one
// millisecond of audio at the configured sink rate. The engine's only
// assumption about the consumer is that read advances monotonically at
// wall-clock rate.
func (r *Ring) drain() {
	t := time.NewTicker(tick)
	defer t.Stop()
	for range t.C {
		if !r.started.Load() {
			continue
		}
		consume := r.SampleRate() / 1000
		if consume < 1 {
			consume = 1
		}
		if avail := r.Used(); consume > avail {
			consume = avail
		}
		if consume > 0 {
			rd := r.readPos.Load()
			r.readPos.Store((rd + uint32(consume)) % RingSize)
		}
	}
}
