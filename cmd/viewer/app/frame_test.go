package app

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/roman-kulish/drone-signal-synth/internal/signal"
)

func testSamples(n int) []signal.Sample {
	samples := make([]signal.Sample, n)
	for i := range samples {
		samples[i] = signal.Sample{
			Time:      float64(i) / 10,
			Frequency: 430 + float64(i%20)/4,
			Strength:  -100 + float64(i%40),
		}
	}
	return samples
}

func TestFrameRenderer_Size(t *testing.T) {
	testCases := []struct {
		name    string
		samples []signal.Sample
		paused  bool
	}{
		{name: "empty", samples: nil},
		{name: "single", samples: testSamples(1)},
		{name: "history", samples: testSamples(300)},
		{name: "paused", samples: testSamples(50), paused: true},
	}

	r, err := NewFrameRenderer(FrameConfig{Width: 800, Height: 600, Drone: "Orlan-10", Mode: "Telemetry"})
	if err != nil {
		t.Fatalf("NewFrameRenderer: %v", err)
	}
	defer r.Close()

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for _, s := range tc.samples {
				r.Observe(s)
			}

			img, err := r.Render(tc.samples, Status{Paused: tc.paused, Clock: time.Now(), Pulled: uint64(len(tc.samples))})
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got := img.Bounds().Size(); got != (image.Point{X: 800, Y: 600}) {
				t.Errorf("Expected 800x600 frame, got %v", got)
			}
		})
	}
}

func TestFrameRenderer_DrawsSamples(t *testing.T) {
	r, err := NewFrameRenderer(FrameConfig{Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("NewFrameRenderer: %v", err)
	}
	defer r.Close()

	empty, err := r.Render(nil, Status{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	full, err := r.Render(testSamples(200), Status{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if countNonWhite(full) <= countNonWhite(empty) {
		t.Error("Expected samples to add pixels to the frame")
	}
}

func TestNewFrameRenderer_TooSmall(t *testing.T) {
	if _, err := NewFrameRenderer(FrameConfig{Width: 100, Height: 100}); err == nil {
		t.Error("Expected an error for a tiny frame")
	}
}

func TestWriteFrame(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.png")
	sink := WriteFrame(path)

	for _, size := range []int{10, 20} {
		if err := sink(image.NewRGBA(image.Rect(0, 0, size, size))); err != nil {
			t.Fatalf("sink: %v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Bounds().Dx() != 20 {
		t.Errorf("Expected the latest frame, got width %d", img.Bounds().Dx())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the frame file, got %d entries", len(entries))
	}
}

func countNonWhite(img image.Image) int {
	var n int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c := color.GrayModel.Convert(img.At(x, y)).(color.Gray); c.Y != 0xff {
				n++
			}
		}
	}
	return n
}
