package player

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestWriteWAVHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := writeWAVHeader(&buf, 88200); err != nil {
		t.Fatalf("writeWAVHeader: %v", err)
	}

	h := buf.Bytes()
	if len(h) != 44 {
		t.Fatalf("header is %d bytes, want 44", len(h))
	}
	if string(h[0:4]) != "RIFF" || string(h[8:12]) != "WAVE" {
		t.Errorf("bad RIFF/WAVE markers: %q %q", h[0:4], h[8:12])
	}
	if got := binary.LittleEndian.Uint32(h[4:]); got != 36+88200 {
		t.Errorf("riff size = %d, want %d", got, 36+88200)
	}
	if string(h[12:16]) != "fmt " {
		t.Errorf("bad fmt marker: %q", h[12:16])
	}
	if got := binary.LittleEndian.Uint16(h[20:]); got != 1 {
		t.Errorf("audio format = %d, want 1 (PCM)", got)
	}
	if got := binary.LittleEndian.Uint16(h[22:]); got != 2 {
		t.Errorf("channels = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint32(h[24:]); got != SampleRate {
		t.Errorf("sample rate = %d, want %d", got, SampleRate)
	}
	if got := binary.LittleEndian.Uint32(h[28:]); got != SampleRate*4 {
		t.Errorf("byte rate = %d, want %d", got, SampleRate*4)
	}
	if got := binary.LittleEndian.Uint16(h[34:]); got != 16 {
		t.Errorf("bits per sample = %d, want 16", got)
	}
	if string(h[36:40]) != "data" {
		t.Errorf("bad data marker: %q", h[36:40])
	}
	if got := binary.LittleEndian.Uint32(h[40:]); got != 88200 {
		t.Errorf("data size = %d, want 88200", got)
	}
}
