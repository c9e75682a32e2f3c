// SPDX-License-Identifier: EPL-2.0

package manager

// routerUpdate selects the highest-priority source that wants to play. A tie
// keeps the earlier id in enum order: only a strictly higher priority
// displaces the running candidate.
func (m *Manager) routerUpdate() {
	best := SrcDisabled
	bestPrio := uint8(0)
	for i := SourceID(1); i < srcCount; i++ {
		if m.sources[i].wantPlay && m.sources[i].priority > bestPrio {
			bestPrio = m.sources[i].priority
			best = i
		}
	}
	if best != m.current {
		m.switchSource(best)
	}
}

// switchSource hands the sink over to newID with a fade-flush of whatever the
// old source left in the ring. A preempted player is paused, not stopped, so
// it resumes when routing falls back to it.
func (m *Manager) switchSource(newID SourceID) {
	if m.current != SrcDisabled {
		m.sources[m.current].active = false
		if m.current == SrcPlayer && m.state == StatePlaying {
			m.state = StatePaused
		}
		m.ring.Flush(true)
	}
	m.log.Debug().Stringer("from", m.current).Stringer("to", newID).Msg("source switch")
	m.setCurrent(newID)
	if newID != SrcDisabled {
		m.sources[newID].active = true
		if newID == SrcPlayer && m.state == StatePaused {
			m.state = StatePlaying
		}
	}
}
