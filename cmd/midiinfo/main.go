package main

import (
	"fmt"
	"os"

	"github.com/truizsanchez/camina-drummer/song"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	for _, path := range os.Args[1:] {
		if err := inspect(path); err != nil {
			fmt.Printf("%s: %v\n", path, err)
		}
	}
}

func usage() {
	fmt.Println("MIDI file inspector")
	fmt.Println("")
	fmt.Println("Usage: midiinfo <file.mid> [more.mid ...]")
}

func inspect(path string) error {
	s, err := song.Load(path)
	if err != nil {
		return err
	}

	fmt.Printf("=== %s ===\n", s.Name())
	fmt.Printf("  PPQ:            %d\n", s.PPQ)
	fmt.Printf("  Events:         %d\n", len(s.Events))
	fmt.Printf("  Length:         %d ticks, %.1fs\n", s.EndTick, s.Duration())
	fmt.Printf("  First BPM:      %.2f\n", s.FirstBPM())
	fmt.Printf("  Estimated BPM:  %.2f (duration-weighted)\n", s.EstimateBPM())

	fmt.Printf("  Channels:       ")
	for i, ch := range s.Channels() {
		if i > 0 {
			fmt.Printf(", ")
		}
		if ch == song.DrumChannel {
			fmt.Printf("%d (drums)", ch)
		} else {
			fmt.Printf("%d", ch)
		}
	}
	fmt.Println()

	if len(s.Tempos) > 0 {
		fmt.Printf("  Tempo changes:  %d\n", len(s.Tempos))
		for _, tc := range s.Tempos {
			fmt.Printf("    tick %-8d %.2f bpm\n", tc.Tick, tc.BPM)
		}
	}
	fmt.Println()
	return nil
}
