// Package player renders songs through a SoundFont synthesizer. Playback
// runs on the audio stream; the TUI talks to it via Play/Stop and the live
// mute flags.
package player

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/truizsanchez/camina-drummer/debug"
	"github.com/truizsanchez/camina-drummer/song"
)

// SampleRate for synthesis and audio output
const SampleRate = 44100

// Player owns the SoundFont and the audio output context. One playback at a
// time; mute flags can be flipped while playing and take effect immediately.
type Player struct {
	soundFont *meltysynth.SoundFont

	mu      sync.Mutex
	playing bool
	stop    chan struct{}

	muteMu sync.RWMutex
	mute   song.Mute

	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
}

// New loads the SoundFont and returns a ready player
func New(soundFontPath string) (*Player, error) {
	data, err := os.ReadFile(soundFontPath)
	if err != nil {
		return nil, fmt.Errorf("read soundfont %s: %w", soundFontPath, err)
	}
	sf, err := meltysynth.NewSoundFont(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse soundfont %s: %w", soundFontPath, err)
	}
	debug.Log("player", "loaded soundfont %s (%d bytes)", soundFontPath, len(data))
	return &Player{soundFont: sf}, nil
}

// SetMute updates the live mute flags
func (p *Player) SetMute(m song.Mute) {
	p.muteMu.Lock()
	p.mute = m
	p.muteMu.Unlock()
}

// Mute returns the current mute flags
func (p *Player) Mute() song.Mute {
	p.muteMu.RLock()
	defer p.muteMu.RUnlock()
	return p.mute
}

func (p *Player) suppressed(channel uint8) bool {
	p.muteMu.RLock()
	defer p.muteMu.RUnlock()
	return p.mute.Suppressed(channel)
}

// Playing reports whether a playback is running
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// context returns the audio output context, creating it on first use.
// oto allows only one context per process.
func (p *Player) context() (*oto.Context, error) {
	p.otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
		})
		if err != nil {
			p.otoErr = fmt.Errorf("open audio output: %w", err)
			return
		}
		<-ready
		p.otoCtx = ctx
	})
	return p.otoCtx, p.otoErr
}

func (p *Player) newSynth() (*meltysynth.Synthesizer, error) {
	settings := meltysynth.NewSynthesizerSettings(SampleRate)
	synth, err := meltysynth.NewSynthesizer(p.soundFont, settings)
	if err != nil {
		return nil, fmt.Errorf("create synthesizer: %w", err)
	}
	return synth, nil
}

// Play starts playback of the song with the given time factor. It refuses to
// start while another playback runs. The returned channel receives the
// playback result (nil on normal completion or stop) exactly once.
func (p *Player) Play(s *song.Song, factor float64) (<-chan error, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playing {
		debug.Log("player", "play refused: playback already running")
		return nil, fmt.Errorf("playback already running")
	}
	if factor <= 0 {
		factor = 1.0
	}

	ctx, err := p.context()
	if err != nil {
		return nil, err
	}
	synth, err := p.newSynth()
	if err != nil {
		return nil, err
	}

	schedule := song.Rescale(s.Schedule(), factor)
	st := newStream(synth, schedule, p.suppressed)

	otoPlayer := ctx.NewPlayer(st)
	otoPlayer.Play()

	p.playing = true
	p.stop = make(chan struct{})
	stop := p.stop
	done := make(chan error, 1)

	debug.Log("player", "playing %s: %d events, factor %.2f", s.Name(), len(schedule), factor)

	go func() {
		start := time.Now()
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				st.halt()
				stop = nil
			case <-ticker.C:
			}
			if st.done() && !otoPlayer.IsPlaying() {
				break
			}
		}
		otoPlayer.Close()

		p.mu.Lock()
		p.playing = false
		p.mu.Unlock()

		debug.Log("player", "playback finished (%.1fs)", time.Since(start).Seconds())
		done <- nil
	}()

	return done, nil
}

// Stop signals the current playback to end. No-op when idle.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing || p.stop == nil {
		debug.Log("player", "no active playback to stop")
		return
	}
	debug.Log("player", "stopping playback")
	close(p.stop)
	p.stop = nil
}
