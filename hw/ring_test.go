// SPDX-License-Identifier: EPL-2.0

package hw

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestRing() *Ring { return NewRing(zerolog.Nop()) }

func fillRegion(wr WriteRegion, start int16) int {
	v := start
	for i := range wr.A {
		wr.A[i] = v
		v++
	}
	for i := range wr.B {
		wr.B[i] = v
		v++
	}
	return wr.Cap()
}

func TestRing_EmptyAndSentinel(t *testing.T) {
	t.Parallel()

	r := newTestRing()
	r.StartExternal()
	if r.Used() != 0 {
		t.Errorf("Used() = %d, want 0", r.Used())
	}
	if r.FreeSpace() != RingSize-1 {
		t.Errorf("FreeSpace() = %d, want %d", r.FreeSpace(), RingSize-1)
	}

	wr := r.AcquireWrite(1, time.Millisecond)
	if wr.Cap() != RingSize-1 {
		t.Fatalf("AcquireWrite cap = %d, want %d", wr.Cap(), RingSize-1)
	}
	r.CommitWrite(wr.Cap())
	if r.Used() != RingSize-1 {
		t.Errorf("Used() = %d, want %d", r.Used(), RingSize-1)
	}
	if r.FreeSpace() != 0 {
		t.Errorf("FreeSpace() = %d, want 0", r.FreeSpace())
	}
}

func TestRing_AcquireTimeout(t *testing.T) {
	t.Parallel()

	r := newTestRing()
	r.StartExternal()
	wr := r.AcquireWrite(1, 10*time.Millisecond)
	r.CommitWrite(fillRegion(wr, 0))

	// Full ring: a large request must time out with an empty region.
	wr = r.AcquireWrite(1000, 20*time.Millisecond)
	if wr.Cap() != 0 {
		t.Errorf("AcquireWrite on full ring cap = %d, want 0", wr.Cap())
	}
}

func TestRing_AcquireStoppedReturnsEmpty(t *testing.T) {
	t.Parallel()

	r := newTestRing()
	// Never started: AcquireWrite must bail out instead of spinning.
	if wr := r.AcquireWrite(RingSize, time.Second); wr.Cap() != 0 {
		t.Errorf("AcquireWrite on stopped ring cap = %d, want 0", wr.Cap())
	}
}

// Samples written through split regions must come back in order across
// wrap-arounds, with no drops and no reorder.
func TestRing_OrderAcrossWrap(t *testing.T) {
	t.Parallel()

	r := newTestRing()
	r.StartExternal()

	const total = 3 * RingSize
	next := int16(0)
	verified := 0
	tmp := make([]int16, 1000)

	for verified < total {
		wr := r.AcquireWrite(1, 10*time.Millisecond)
		n := wr.Cap()
		if n > 1000 {
			n = 1000
		}
		v := next
		for i := 0; i < n; i++ {
			if i < len(wr.A) {
				wr.A[i] = v
			} else {
				wr.B[i-len(wr.A)] = v
			}
			v++
		}
		next = v
		r.CommitWrite(n)

		got := r.Consume(tmp[:n])
		if got != n {
			t.Fatalf("Consume() = %d, want %d", got, n)
		}
		for i := 0; i < got; i++ {
			want := int16(verified + i)
			if tmp[i] != want {
				t.Fatalf("sample %d = %d, want %d", verified+i, tmp[i], want)
			}
		}
		verified += got
	}
}

// Concurrent producer and consumer: the SPSC contract must preserve the
// sample sequence.
func TestRing_ConcurrentSPSC(t *testing.T) {
	t.Parallel()

	r := newTestRing()
	r.StartExternal()

	const total = 100000
	done := make(chan error, 1)

	go func() {
		seen := 0
		buf := make([]int16, 512)
		for seen < total {
			n := r.Consume(buf)
			for i := 0; i < n; i++ {
				if buf[i] != int16(uint16(seen+i)) {
					done <- fmt.Errorf("sequence mismatch at sample %d", seen+i)
					return
				}
			}
			seen += n
			if n == 0 {
				time.Sleep(time.Millisecond)
			}
		}
		done <- nil
	}()

	written := 0
	for written < total {
		wr := r.AcquireWrite(1, 100*time.Millisecond)
		n := wr.Cap()
		if n > total-written {
			n = total - written
		}
		for i := 0; i < n; i++ {
			s := int16(uint16(written + i))
			if i < len(wr.A) {
				wr.A[i] = s
			} else {
				wr.B[i-len(wr.A)] = s
			}
		}
		r.CommitWrite(n)
		written += n
	}

	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestRing_FlushDiscards(t *testing.T) {
	t.Parallel()

	r := newTestRing()
	r.StartExternal()
	wr := r.AcquireWrite(1, time.Millisecond)
	r.CommitWrite(fillRegion(wr, 1))

	r.Flush(false)
	if r.Used() != 0 {
		t.Errorf("Used() after flush = %d, want 0", r.Used())
	}
}

func TestRing_FlushFadeRampsTail(t *testing.T) {
	t.Parallel()

	r := newTestRing()
	r.StartExternal()

	wr := r.AcquireWrite(400, time.Millisecond)
	n := 400
	for i := 0; i < n; i++ {
		wr.A[i] = 10000
	}
	r.CommitWrite(n)

	r.Flush(true)

	// The ramp scales the sample i slots behind the write pointer by
	// (FadeSamples-i)/FadeSamples.
	for i := 0; i < FadeSamples; i++ {
		idx := (400 - 1 - i + RingSize) % RingSize
		want := int16(10000 * (FadeSamples - i) / FadeSamples)
		if r.buf[idx] != want {
			t.Fatalf("buf[%d] = %d, want %d", idx, r.buf[idx], want)
		}
	}
	// Samples before the fade window stay untouched.
	if r.buf[0] != 10000 {
		t.Errorf("buf[0] = %d, want untouched 10000", r.buf[0])
	}
	if r.Used() != 0 {
		t.Errorf("Used() after fade flush = %d, want 0", r.Used())
	}
}

func TestRing_DrainAtWallClock(t *testing.T) {
	t.Parallel()

	r := newTestRing()
	r.SetSampleRate(8000)
	r.Start()
	defer r.Stop()

	wr := r.AcquireWrite(100, 10*time.Millisecond)
	if wr.Cap() < 800 {
		t.Fatalf("AcquireWrite cap = %d, want at least 800", wr.Cap())
	}
	r.CommitWrite(800) // 100 ms of audio at 8 kHz

	deadline := time.Now().Add(2 * time.Second)
	for r.Used() > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("drain did not consume buffered samples, Used() = %d", r.Used())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRing_SetSampleRate(t *testing.T) {
	t.Parallel()

	r := newTestRing()
	if r.SampleRate() != DefaultSampleRate {
		t.Errorf("SampleRate() = %d, want default %d", r.SampleRate(), DefaultSampleRate)
	}
	r.SetSampleRate(96000)
	if r.SampleRate() != 96000 {
		t.Errorf("SampleRate() = %d, want 96000", r.SampleRate())
	}
	r.SetSampleRate(0)
	if r.SampleRate() != DefaultSampleRate {
		t.Errorf("SampleRate(0) = %d, want default %d", r.SampleRate(), DefaultSampleRate)
	}
}
