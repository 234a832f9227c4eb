// Package song loads standard MIDI files into a flat event list and provides
// the tempo estimation, channel filtering and time rescaling that drive
// practice playback.
package song

import (
	"fmt"
	"path/filepath"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

// DrumChannel is the General MIDI percussion channel (0-based).
const DrumChannel = 9

// EventType identifies the kind of channel event
type EventType uint8

const (
	NoteOn EventType = iota
	NoteOff
	ProgramChange
	ControlChange
	PitchBend
)

// Event is a single channel event at an absolute tick position.
// Data1/Data2 meaning depends on Type: note/velocity for notes,
// program for ProgramChange, controller/value for ControlChange.
// Bend is the absolute 14-bit value for PitchBend (center 8192).
type Event struct {
	Tick    int64
	Track   int
	Type    EventType
	Channel uint8
	Data1   uint8
	Data2   uint8
	Bend    uint16
}

// Song is a loaded MIDI file flattened to a single event stream
type Song struct {
	Path    string
	PPQ     uint32
	Events  []Event
	Tempos  TempoMap
	EndTick int64
}

// Name returns the file name without directory
func (s *Song) Name() string {
	return filepath.Base(s.Path)
}

// Load reads and flattens a standard MIDI file
func Load(path string) (*Song, error) {
	mid, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read midi file %s: %w", path, err)
	}
	return FromSMF(mid, path)
}

// FromSMF flattens a parsed SMF into a Song. Tracks are merged into one
// stream ordered by absolute tick; events at the same tick keep track order.
func FromSMF(mid *smf.SMF, path string) (*Song, error) {
	tf, ok := mid.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported SMPTE time format", path)
	}
	ppq := uint32(tf)
	if ppq == 0 {
		ppq = 960
	}

	s := &Song{
		Path: path,
		PPQ:  ppq,
	}

	for trackIdx, track := range mid.Tracks {
		var abs int64
		for _, ev := range track {
			abs += int64(ev.Delta)
			msg := ev.Message

			var bpm float64
			if msg.GetMetaTempo(&bpm) {
				if bpm > 0 {
					s.Tempos = append(s.Tempos, TempoChange{Tick: abs, BPM: bpm})
				}
				continue
			}

			var ch, d1, d2 uint8
			var rel int16
			var bend uint16
			switch {
			case msg.GetNoteStart(&ch, &d1, &d2):
				s.Events = append(s.Events, Event{Tick: abs, Track: trackIdx, Type: NoteOn, Channel: ch, Data1: d1, Data2: d2})
			case msg.GetNoteEnd(&ch, &d1):
				s.Events = append(s.Events, Event{Tick: abs, Track: trackIdx, Type: NoteOff, Channel: ch, Data1: d1})
			case msg.GetProgramChange(&ch, &d1):
				s.Events = append(s.Events, Event{Tick: abs, Track: trackIdx, Type: ProgramChange, Channel: ch, Data1: d1})
			case msg.GetControlChange(&ch, &d1, &d2):
				s.Events = append(s.Events, Event{Tick: abs, Track: trackIdx, Type: ControlChange, Channel: ch, Data1: d1, Data2: d2})
			case msg.GetPitchBend(&ch, &rel, &bend):
				s.Events = append(s.Events, Event{Tick: abs, Track: trackIdx, Type: PitchBend, Channel: ch, Bend: bend})
			}
		}
		if abs > s.EndTick {
			s.EndTick = abs
		}
	}

	sort.SliceStable(s.Events, func(i, j int) bool {
		return s.Events[i].Tick < s.Events[j].Tick
	})
	sort.SliceStable(s.Tempos, func(i, j int) bool {
		return s.Tempos[i].Tick < s.Tempos[j].Tick
	})

	return s, nil
}

// Channels returns the set of channels with note events, in ascending order
func (s *Song) Channels() []uint8 {
	seen := make(map[uint8]bool)
	for _, ev := range s.Events {
		if ev.Type == NoteOn {
			seen[ev.Channel] = true
		}
	}
	var out []uint8
	for ch := range seen {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
