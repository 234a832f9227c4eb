package player

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/truizsanchez/camina-drummer/debug"
	"github.com/truizsanchez/camina-drummer/song"
)

// ExportWAV renders the practice mix offline to a 16-bit stereo WAV file.
// The mute selection is applied as a stream filter up front, so the output
// matches what playback with those settings would sound like.
func (p *Player) ExportWAV(s *song.Song, factor float64, mute song.Mute, outPath string) error {
	synth, err := p.newSynth()
	if err != nil {
		return err
	}
	if factor <= 0 {
		factor = 1.0
	}

	events := song.FilterChannels(song.Rescale(s.Schedule(), factor), mute)
	st := newStream(synth, events, func(uint8) bool { return false })

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()

	// Header with zero sizes first, patched after rendering
	if err := writeWAVHeader(f, 0); err != nil {
		return err
	}

	var dataLen uint32
	fbuf := make([]byte, blockSize*8)
	pcm := make([]byte, blockSize*4)
	for {
		n, err := io.ReadFull(st, fbuf)
		if n > 0 {
			// float32 samples -> int16
			samples := n / 4
			for i := 0; i < samples; i++ {
				v := math.Float32frombits(binary.LittleEndian.Uint32(fbuf[4*i:]))
				if v > 1 {
					v = 1
				} else if v < -1 {
					v = -1
				}
				binary.LittleEndian.PutUint16(pcm[2*i:], uint16(int16(v*32767)))
			}
			if _, werr := f.Write(pcm[:samples*2]); werr != nil {
				return fmt.Errorf("write %s: %w", outPath, werr)
			}
			dataLen += uint32(samples * 2)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return err
		}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := writeWAVHeader(f, dataLen); err != nil {
		return err
	}

	debug.Log("export", "wrote %s: %d events, %d bytes pcm", outPath, len(events), dataLen)
	return nil
}

// writeWAVHeader writes a canonical 44-byte RIFF/WAVE header for 16-bit
// stereo PCM at SampleRate.
func writeWAVHeader(w io.Writer, dataLen uint32) error {
	const (
		channels      = 2
		bitsPerSample = 16
	)
	byteRate := uint32(SampleRate * channels * bitsPerSample / 8)
	blockAlign := uint16(channels * bitsPerSample / 8)

	if _, err := w.Write([]byte("RIFF")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(36+dataLen)); err != nil {
		return err
	}
	if _, err := w.Write([]byte("WAVEfmt ")); err != nil {
		return err
	}
	for _, v := range []any{
		uint32(16),            // fmt chunk size
		uint16(1),             // PCM
		uint16(channels),      //
		uint32(SampleRate),    //
		byteRate,              //
		blockAlign,            //
		uint16(bitsPerSample), //
	} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if _, err := w.Write([]byte("data")); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, dataLen)
}
