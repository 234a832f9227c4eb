package song

// Mute selects which channels have their note events suppressed.
// Drums mutes the GM percussion channel; Others mutes its complement.
type Mute struct {
	Drums  bool
	Others bool
}

// Suppressed reports whether note events on the channel are muted
func (m Mute) Suppressed(channel uint8) bool {
	if channel == DrumChannel {
		return m.Drums
	}
	return m.Others
}

// Any reports whether any channel is muted
func (m Mute) Any() bool {
	return m.Drums || m.Others
}

// FilterChannels returns the event stream with note events on suppressed
// channels removed. All other events pass through unchanged, in order.
func FilterChannels(events []TimedEvent, m Mute) []TimedEvent {
	if !m.Any() {
		return events
	}
	out := make([]TimedEvent, 0, len(events))
	for _, ev := range events {
		if (ev.Type == NoteOn || ev.Type == NoteOff) && m.Suppressed(ev.Channel) {
			continue
		}
		out = append(out, ev)
	}
	return out
}
