package song

import (
	"strconv"
	"strings"
)

// DefaultBPM is assumed when a file carries no tempo events
const DefaultBPM = 120.0

// TempoChange is a tempo event at an absolute tick position
type TempoChange struct {
	Tick int64
	BPM  float64
}

// TempoMap is the ordered list of tempo events in a song
type TempoMap []TempoChange

func ticksToSeconds(ticks int64, ppq uint32, bpm float64) float64 {
	return float64(ticks) / float64(ppq) * 60.0 / bpm
}

// SecondsAt converts an absolute tick to seconds by walking tempo segments.
// Ticks before the first tempo event run at DefaultBPM.
func (tm TempoMap) SecondsAt(tick int64, ppq uint32) float64 {
	var secs float64
	lastTick := int64(0)
	lastBPM := DefaultBPM
	for _, tc := range tm {
		if tc.Tick >= tick {
			break
		}
		secs += ticksToSeconds(tc.Tick-lastTick, ppq, lastBPM)
		lastTick = tc.Tick
		lastBPM = tc.BPM
	}
	return secs + ticksToSeconds(tick-lastTick, ppq, lastBPM)
}

// Duration returns the song length in seconds at original tempo
func (s *Song) Duration() float64 {
	return s.Tempos.SecondsAt(s.EndTick, s.PPQ)
}

// EstimateBPM computes the duration-weighted average BPM over all tempo
// events. Each tempo is weighted by how long it stays in effect, from the
// event to the next tempo change (or end of file). Returns DefaultBPM when
// the file has no tempo events or zero playing time.
func (s *Song) EstimateBPM() float64 {
	if len(s.Tempos) == 0 {
		return DefaultBPM
	}

	var weighted, total float64
	for i, tc := range s.Tempos {
		endTick := s.EndTick
		if i+1 < len(s.Tempos) {
			endTick = s.Tempos[i+1].Tick
		}
		if endTick <= tc.Tick {
			continue
		}
		dur := ticksToSeconds(endTick-tc.Tick, s.PPQ, tc.BPM)
		weighted += tc.BPM * dur
		total += dur
	}

	if total == 0 {
		return DefaultBPM
	}
	return weighted / total
}

// FirstBPM returns the tempo of the first tempo event, or DefaultBPM
func (s *Song) FirstBPM() float64 {
	if len(s.Tempos) == 0 {
		return DefaultBPM
	}
	return s.Tempos[0].BPM
}

// TempoMode selects how the tempo field is interpreted
type TempoMode string

const (
	ModeBPM        TempoMode = "BPM"
	ModePercentage TempoMode = "Percentage"
)

// TempoFactor converts user input into a playback time multiplier
// (1.0 = original speed, 2.0 = half speed). In BPM mode the factor is
// originalBPM/desired; in Percentage mode it is 100/percent. Empty,
// unparseable or non-positive input yields 1.0.
func TempoFactor(input string, mode TempoMode, originalBPM float64) float64 {
	text := strings.TrimSpace(input)
	if text == "" {
		return 1.0
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil || value <= 0 {
		return 1.0
	}
	if mode == ModePercentage {
		return 100.0 / value
	}
	if originalBPM <= 0 {
		return 1.0
	}
	return originalBPM / value
}

// TimedEvent is an Event realized at a wall-clock time
type TimedEvent struct {
	Event
	Seconds float64
}

// Schedule computes the wall-clock time of every event at original tempo.
// Events keep their order; the walk is incremental over the tempo map.
func (s *Song) Schedule() []TimedEvent {
	out := make([]TimedEvent, 0, len(s.Events))

	var secs float64
	lastTick := int64(0)
	lastBPM := DefaultBPM
	nextTempo := 0

	for _, ev := range s.Events {
		for nextTempo < len(s.Tempos) && s.Tempos[nextTempo].Tick <= ev.Tick {
			tc := s.Tempos[nextTempo]
			secs += ticksToSeconds(tc.Tick-lastTick, s.PPQ, lastBPM)
			lastTick = tc.Tick
			lastBPM = tc.BPM
			nextTempo++
		}
		out = append(out, TimedEvent{
			Event:   ev,
			Seconds: secs + ticksToSeconds(ev.Tick-lastTick, s.PPQ, lastBPM),
		})
	}
	return out
}

// Rescale multiplies every event time by a constant factor. Order is
// preserved; the input is not modified.
func Rescale(events []TimedEvent, factor float64) []TimedEvent {
	if factor <= 0 {
		factor = 1.0
	}
	out := make([]TimedEvent, len(events))
	for i, ev := range events {
		ev.Seconds *= factor
		out[i] = ev
	}
	return out
}
