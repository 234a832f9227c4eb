package song

import (
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// fixtureSMF builds a two-track file: a tempo track (100 then 200 BPM) and a
// music track with notes on channel 0 and the drum channel.
func fixtureSMF(t *testing.T) *smf.SMF {
	t.Helper()

	var tempoTrack smf.Track
	tempoTrack.Add(0, smf.MetaTempo(100))
	tempoTrack.Add(960, smf.MetaTempo(200))
	tempoTrack.Close(0)

	var music smf.Track
	music.Add(0, midi.ProgramChange(0, 5))
	music.Add(0, midi.NoteOn(9, 36, 100))
	music.Add(480, midi.NoteOn(0, 60, 90))
	music.Add(0, midi.NoteOff(9, 36))
	music.Add(480, midi.NoteOff(0, 60))
	music.Close(0)

	mid := smf.New()
	mid.TimeFormat = smf.MetricTicks(480)
	mid.Add(tempoTrack)
	mid.Add(music)
	return mid
}

func TestFromSMF(t *testing.T) {
	s, err := FromSMF(fixtureSMF(t), "fixture.mid")
	if err != nil {
		t.Fatalf("FromSMF failed: %v", err)
	}

	if s.PPQ != 480 {
		t.Errorf("PPQ = %d, want 480", s.PPQ)
	}
	if len(s.Tempos) != 2 {
		t.Fatalf("got %d tempo events, want 2", len(s.Tempos))
	}
	if s.Tempos[0].Tick != 0 || !almostEqual(s.Tempos[0].BPM, 100) {
		t.Errorf("tempo[0] = %+v, want tick 0 at 100 bpm", s.Tempos[0])
	}
	if s.Tempos[1].Tick != 960 || !almostEqual(s.Tempos[1].BPM, 200) {
		t.Errorf("tempo[1] = %+v, want tick 960 at 200 bpm", s.Tempos[1])
	}

	// program change + 2 note ons + 2 note offs
	if len(s.Events) != 5 {
		t.Fatalf("got %d events, want 5", len(s.Events))
	}

	// Absolute ticks are non-decreasing
	for i := 1; i < len(s.Events); i++ {
		if s.Events[i].Tick < s.Events[i-1].Tick {
			t.Errorf("events out of order at %d: tick %d after %d",
				i, s.Events[i].Tick, s.Events[i-1].Tick)
		}
	}

	if s.EndTick != 960 {
		t.Errorf("EndTick = %d, want 960", s.EndTick)
	}
}

func TestFromSMFEventDecoding(t *testing.T) {
	s, err := FromSMF(fixtureSMF(t), "fixture.mid")
	if err != nil {
		t.Fatalf("FromSMF failed: %v", err)
	}

	var drumOn, drumOff, melodicOn bool
	for _, ev := range s.Events {
		switch {
		case ev.Type == NoteOn && ev.Channel == 9 && ev.Data1 == 36 && ev.Data2 == 100:
			drumOn = true
		case ev.Type == NoteOff && ev.Channel == 9 && ev.Data1 == 36:
			if ev.Tick != 480 {
				t.Errorf("drum note off at tick %d, want 480", ev.Tick)
			}
			drumOff = true
		case ev.Type == NoteOn && ev.Channel == 0 && ev.Data1 == 60:
			melodicOn = true
		}
	}
	if !drumOn || !drumOff || !melodicOn {
		t.Errorf("missing decoded events: drumOn=%v drumOff=%v melodicOn=%v",
			drumOn, drumOff, melodicOn)
	}
}

func TestChannels(t *testing.T) {
	s, err := FromSMF(fixtureSMF(t), "fixture.mid")
	if err != nil {
		t.Fatalf("FromSMF failed: %v", err)
	}
	chans := s.Channels()
	if len(chans) != 2 || chans[0] != 0 || chans[1] != 9 {
		t.Errorf("Channels() = %v, want [0 9]", chans)
	}
}

func TestFromSMFEstimate(t *testing.T) {
	s, err := FromSMF(fixtureSMF(t), "fixture.mid")
	if err != nil {
		t.Fatalf("FromSMF failed: %v", err)
	}
	// 100 BPM covers ticks 0-960 (2 beats, 1.2s); the 200 BPM change sits
	// exactly at end of file, so the estimate is all 100.
	if got := s.EstimateBPM(); !almostEqual(got, 100) {
		t.Errorf("EstimateBPM = %f, want 100", got)
	}
}
