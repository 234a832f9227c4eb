package player

import (
	"encoding/binary"
	"io"
	"math"
	"sync/atomic"

	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/truizsanchez/camina-drummer/debug"
	"github.com/truizsanchez/camina-drummer/song"
)

const (
	// samples rendered per synthesis block
	blockSize = 2048

	// seconds rendered after the last event so releases can ring out
	releaseTail = 1.0

	// shorter tail after an explicit stop
	stopTail = 0.25
)

// stream feeds the audio player. Each Read renders synthesizer blocks,
// dispatching due events before each block. Mute is consulted per note at
// dispatch time, so flipping it mid-playback is audible right away.
type stream struct {
	synth  *meltysynth.Synthesizer
	events []song.TimedEvent
	muted  func(channel uint8) bool

	next      int
	clock     float64
	releasing bool
	tailLeft  float64

	halted   atomic.Bool
	finished atomic.Bool

	left, right []float32
	buf         []byte
	off         int
}

func newStream(synth *meltysynth.Synthesizer, events []song.TimedEvent, muted func(uint8) bool) *stream {
	return &stream{
		synth:  synth,
		events: events,
		muted:  muted,
		left:   make([]float32, blockSize),
		right:  make([]float32, blockSize),
		buf:    make([]byte, blockSize*8), // 2 channels x float32
		off:    blockSize * 8,
	}
}

// halt requests the stream to wind down. Safe from any goroutine.
func (st *stream) halt() {
	st.halted.Store(true)
}

// done reports whether the stream has reached its end
func (st *stream) done() bool {
	return st.finished.Load()
}

func (st *stream) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if st.off >= len(st.buf) {
			if !st.renderBlock() {
				if n == 0 {
					return 0, io.EOF
				}
				return n, nil
			}
		}
		c := copy(p[n:], st.buf[st.off:])
		n += c
		st.off += c
	}
	return n, nil
}

// renderBlock dispatches due events and renders one block into buf.
// Returns false once the stream is exhausted.
func (st *stream) renderBlock() bool {
	if st.finished.Load() {
		return false
	}
	blockDur := float64(blockSize) / float64(SampleRate)

	switch {
	case st.halted.Load() && !st.releasing:
		st.synth.NoteOffAll(false)
		st.releasing = true
		st.tailLeft = stopTail
	case st.releasing:
		// draining the tail
	default:
		end := st.clock + blockDur
		for st.next < len(st.events) && st.events[st.next].Seconds < end {
			st.dispatch(&st.events[st.next])
			st.next++
		}
		if st.next >= len(st.events) {
			st.releasing = true
			st.tailLeft = releaseTail
		}
	}

	st.synth.Render(st.left, st.right)
	for i := range st.left {
		binary.LittleEndian.PutUint32(st.buf[8*i:], math.Float32bits(st.left[i]))
		binary.LittleEndian.PutUint32(st.buf[8*i+4:], math.Float32bits(st.right[i]))
	}
	st.off = 0
	st.clock += blockDur
	debug.LogEvery(256, "stream", "clock=%.1fs next=%d/%d", st.clock, st.next, len(st.events))

	if st.releasing {
		st.tailLeft -= blockDur
		if st.tailLeft <= 0 {
			st.finished.Store(true)
		}
	}
	return true
}

func (st *stream) dispatch(ev *song.TimedEvent) {
	switch ev.Type {
	case song.NoteOn:
		if st.muted(ev.Channel) {
			return
		}
		st.synth.NoteOn(int32(ev.Channel), int32(ev.Data1), int32(ev.Data2))
	case song.NoteOff:
		// note offs always pass so notes muted mid-flight don't hang
		st.synth.NoteOff(int32(ev.Channel), int32(ev.Data1))
	case song.ProgramChange:
		st.synth.ProcessMidiMessage(int32(ev.Channel), 0xC0, int32(ev.Data1), 0)
	case song.ControlChange:
		st.synth.ProcessMidiMessage(int32(ev.Channel), 0xB0, int32(ev.Data1), int32(ev.Data2))
	case song.PitchBend:
		st.synth.ProcessMidiMessage(int32(ev.Channel), 0xE0, int32(ev.Bend&0x7F), int32(ev.Bend>>7))
	}
}
