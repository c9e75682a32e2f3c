// SPDX-License-Identifier: EPL-2.0

package manager

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/emb-audio/audioengine/audio"
	"github.com/emb-audio/audioengine/hw"
	"github.com/emb-audio/audioengine/stream"
)

const (
	// cmdQueueDepth bounds the command mailbox.
	cmdQueueDepth = 32
	// sendTimeout is how long a sender blocks on a full mailbox before the
	// command is dropped; the caller gets no error, the drop is logged.
	sendTimeout = 50 * time.Millisecond
	// idleWait is the worker's sleep when no source is active.
	idleWait = 50 * time.Millisecond
	// tickDelay paces the pipeline between ticks.
	tickDelay = time.Millisecond
	// acquireTimeout bounds the wait for ring space in a pipeline tick.
	acquireTimeout = 100 * time.Millisecond

	// decodeBlock is the per-tick decode request in samples.
	decodeBlock = 1024
	// maxPathLen bounds queued file paths.
	maxPathLen = 240
	// maxFilenameLen bounds the status filename.
	maxFilenameLen = 64
)

// PlayerStatus is the published snapshot of the file player. Readers receive
// a whole-struct copy consistent at publication time.
type PlayerStatus struct {
	Filename  string
	Position  int
	Duration  int
	Percent   uint8
	Playing   bool
	Paused    bool
	FileReady bool
}

// Manager owns source routing, the play queue, the decoder slot and the
// pipeline tick. All state is mutated by a single worker goroutine; callers
// from any goroutine submit commands through a bounded mailbox and read
// atomically published snapshots.
type Manager struct {
	ring *hw.Ring
	log  zerolog.Logger

	cmds chan command
	quit chan struct{}
	done sync.WaitGroup

	// worker-owned state
	sources  [srcCount]sourceInfo
	current  SourceID
	state    PlayerState
	queue    playQueue
	file     *stream.File
	decoder  audio.Decoder
	resamp   *audio.Resampler
	filename string
	buf      [decodeBlock]int16

	// published snapshots
	status    atomic.Pointer[PlayerStatus]
	curSource atomic.Int32
	queueLen  atomic.Int32
}

// New creates a manager draining into ring and starts its worker. The caller
// owns the ring lifecycle and must have started it (Start or StartExternal).
func New(ring *hw.Ring, log zerolog.Logger) *Manager {
	m := &Manager{
		ring:   ring,
		log:    log,
		cmds:   make(chan command, cmdQueueDepth),
		quit:   make(chan struct{}),
		file:   stream.New(0),
		resamp: audio.NewResampler(),
	}

	m.sources[SrcPlayer].priority = 1
	m.sources[SrcAdcDirect].priority = 2
	m.sources[SrcFrontExternal].priority = 1
	m.sources[SrcDiag].priority = 3
	for i := range m.sources {
		m.sources[i].volume = 7
	}

	m.status.Store(&PlayerStatus{})
	m.done.Add(1)
	go m.run()
	return m
}

// Close stops the worker and releases the stream. Pending commands are
// discarded.
func (m *Manager) Close() {
	close(m.quit)
	m.done.Wait()
}

/* ── Thread-safe command API ── */

// send enqueues a command, blocking up to sendTimeout when the mailbox is
// full, then drops it.
func (m *Manager) send(c command) {
	select {
	case m.cmds <- c:
		return
	default:
	}
	t := time.NewTimer(sendTimeout)
	defer t.Stop()
	select {
	case m.cmds <- c:
	case <-t.C:
		m.log.Warn().Uint8("cmd", uint8(c.typ)).Msg("command mailbox full, dropping")
	case <-m.quit:
	}
}

// Play resumes a paused player, or starts the next queued track when stopped.
func (m *Manager) Play() { m.send(command{typ: cmdPlay}) }

// Pause pauses a playing player.
func (m *Manager) Pause() { m.send(command{typ: cmdPause}) }

// Stop tears down the current track and stops the player.
func (m *Manager) Stop() { m.send(command{typ: cmdStop}) }

// AddFile appends a track to the play queue; playback starts immediately when
// the player is stopped.
func (m *Manager) AddFile(path string, startSec int, out Output) {
	if path == "" {
		return
	}
	if len(path) > maxPathLen {
		path = path[:maxPathLen]
	}
	m.send(command{typ: cmdAddFile, path: path, startSec: startSec, output: out})
}

// AddFileFront drops the current track, prepends path to the queue and starts
// it, preserving the rest of the queue.
func (m *Manager) AddFileFront(path string, startSec int, out Output) {
	if path == "" {
		return
	}
	if len(path) > maxPathLen {
		path = path[:maxPathLen]
	}
	m.send(command{typ: cmdAddFileFront, path: path, startSec: startSec, output: out})
}

// ClearQueue drops the current track and empties the queue.
func (m *Manager) ClearQueue() { m.send(command{typ: cmdClearQueue}) }

// Seek positions the active decoder at sec.
func (m *Manager) Seek(sec int) { m.send(command{typ: cmdSeek, sec: sec}) }

// Forward skips ahead by sec seconds.
func (m *Manager) Forward(sec int) { m.send(command{typ: cmdForward, sec: sec}) }

// Rewind skips back by sec seconds, clamping at zero.
func (m *Manager) Rewind(sec int) { m.send(command{typ: cmdRewind, sec: sec}) }

// RequestActivate marks a source as wanting to play; the router picks the
// highest-priority wanting source on its next pass.
func (m *Manager) RequestActivate(id SourceID) {
	if id == SrcDisabled || id >= srcCount {
		return
	}
	m.send(command{typ: cmdActivate, src: id})
}

// RequestDeactivate withdraws a source; if it is current, the ring is flushed
// and routing falls back.
func (m *Manager) RequestDeactivate(id SourceID) {
	if id == SrcDisabled || id >= srcCount {
		return
	}
	m.send(command{typ: cmdDeactivate, src: id})
}

// SetVolume stores a 0..10 volume on the source, clamping out-of-range
// values.
func (m *Manager) SetVolume(id SourceID, vol int) {
	if id >= srcCount {
		return
	}
	m.send(command{typ: cmdSetVolume, src: id, vol: vol})
}

// SetSampleRate reconfigures the sink rate; the pipeline picks it up on the
// next tick.
func (m *Manager) SetSampleRate(rate int) {
	m.send(command{typ: cmdSetSampleRate, rate: rate})
}

// VolumeChanged is a benign no-op command kept for legacy callers.
func (m *Manager) VolumeChanged() { m.send(command{typ: cmdVolumeChanged}) }

// RegisterSource attaches an external feed and priority to a source.
func (m *Manager) RegisterSource(id SourceID, priority uint8, feed FeedFunc) {
	if id == SrcDisabled || id >= srcCount {
		return
	}
	m.send(command{typ: cmdRegisterSource, src: id, priority: priority, feed: feed})
}

// UnregisterSource detaches a source's feed and withdraws it.
func (m *Manager) UnregisterSource(id SourceID) {
	if id == SrcDisabled || id >= srcCount {
		return
	}
	m.send(command{typ: cmdUnregisterSource, src: id})
}

/* ── Snapshots ── */

// PlayerStatus returns the latest published player snapshot.
func (m *Manager) PlayerStatus() PlayerStatus { return *m.status.Load() }

// CurrentSource returns the source currently feeding the sink.
func (m *Manager) CurrentSource() SourceID { return SourceID(m.curSource.Load()) }

// QueueLen returns the number of queued tracks.
func (m *Manager) QueueLen() int { return int(m.queueLen.Load()) }

/* ── Worker ── */

func (m *Manager) run() {
	defer m.done.Done()
	defer func() {
		m.destroyDecoder()
		m.file.Close()
	}()

	for {
		m.processCommands()

		if m.current == SrcDisabled {
			select {
			case c := <-m.cmds:
				m.apply(c)
			case <-m.quit:
				return
			case <-time.After(idleWait):
			}
			continue
		}

		select {
		case <-m.quit:
			return
		default:
		}
		m.pipelineTick()
		time.Sleep(tickDelay)
	}
}

// processCommands drains the mailbox without blocking, then refreshes routing
// and the published status.
func (m *Manager) processCommands() {
	for {
		select {
		case c := <-m.cmds:
			m.apply(c)
		default:
			m.routerUpdate()
			m.publishStatus()
			return
		}
	}
}

func (m *Manager) apply(c command) {
	switch c.typ {
	case cmdPlay:
		if m.state == StatePaused {
			m.state = StatePlaying
			m.sources[SrcPlayer].wantPlay = true
		} else if m.state == StateStopped && m.queue.len() > 0 {
			m.sources[SrcPlayer].wantPlay = true
			m.startNextTrack()
		}

	case cmdPause:
		if m.state == StatePlaying {
			m.state = StatePaused
		}

	case cmdStop:
		m.destroyDecoder()
		m.file.Close()
		m.state = StateStopped
		m.sources[SrcPlayer].wantPlay = false
		if m.current == SrcPlayer {
			m.ring.Flush(true)
			m.setCurrent(SrcDisabled)
		}

	case cmdAddFile:
		m.queue.push(queueEntry{path: c.path, startSec: c.startSec, output: c.output})
		if m.state == StateStopped {
			m.sources[SrcPlayer].wantPlay = true
			m.startNextTrack()
		}

	case cmdAddFileFront:
		m.destroyDecoder()
		m.file.Close()
		if m.current == SrcPlayer {
			// Soft-cut whatever the dropped track left buffered.
			m.ring.Flush(true)
		}
		m.queue.pushFront(queueEntry{path: c.path, startSec: c.startSec, output: c.output})
		m.sources[SrcPlayer].wantPlay = true
		m.startNextTrack()

	case cmdClearQueue:
		m.destroyDecoder()
		m.file.Close()
		m.queue.clear()
		m.state = StateStopped
		m.sources[SrcPlayer].wantPlay = false

	case cmdSeek:
		if m.decoder != nil {
			sec := c.sec
			if sec < 0 {
				sec = 0
			}
			m.decoder.Seek(sec)
		}

	case cmdForward:
		if m.decoder != nil {
			m.decoder.Seek(m.decoder.Position() + c.sec)
		}

	case cmdRewind:
		if m.decoder != nil {
			pos := m.decoder.Position()
			if pos > c.sec {
				m.decoder.Seek(pos - c.sec)
			} else {
				m.decoder.Seek(0)
			}
		}

	case cmdActivate:
		m.sources[c.src].wantPlay = true

	case cmdDeactivate:
		m.sources[c.src].wantPlay = false
		m.sources[c.src].active = false
		if m.current == c.src {
			m.ring.Flush(true)
			m.setCurrent(SrcDisabled)
		}

	case cmdSetVolume:
		v := c.vol
		if v < 0 {
			v = 0
		} else if v > audio.MaxVolume {
			v = audio.MaxVolume
		}
		m.sources[c.src].volume = v

	case cmdSetSampleRate:
		m.ring.SetSampleRate(c.rate)

	case cmdVolumeChanged:
		// Placeholder for a future volume rescan.

	case cmdRegisterSource:
		m.sources[c.src].priority = c.priority
		m.sources[c.src].feed = c.feed

	case cmdUnregisterSource:
		m.sources[c.src].feed = nil
		m.sources[c.src].wantPlay = false
		m.sources[c.src].active = false
	}
}

func (m *Manager) destroyDecoder() {
	if m.decoder != nil {
		m.decoder.Close()
		m.decoder = nil
	}
}

func (m *Manager) setCurrent(id SourceID) {
	m.current = id
	m.curSource.Store(int32(id))
}

func (m *Manager) publishStatus() {
	st := PlayerStatus{
		Filename:  m.filename,
		Playing:   m.state == StatePlaying,
		Paused:    m.state == StatePaused,
		FileReady: m.decoder != nil && m.decoder.Status() != audio.StatusClosed,
	}
	if m.decoder != nil {
		st.Position = m.decoder.Position()
		st.Duration = m.decoder.Duration()
		if st.Duration > 0 {
			pct := st.Position * 100 / st.Duration
			if pct > 100 {
				pct = 100
			}
			st.Percent = uint8(pct)
		}
	}
	m.status.Store(&st)
	m.queueLen.Store(int32(m.queue.len()))
}
