package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/roman-kulish/drone-signal-synth/internal/render"
	"github.com/roman-kulish/drone-signal-synth/internal/signal"
)

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"

	defaultWidth         = 1200
	defaultHeight        = 800
	defaultFrequencyBins = 200
	defaultTimeBins      = 300
)

type ImageFormat string

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

type Config struct {
	DBPath        string
	SessionID     int64
	OutputFile    string
	Format        ImageFormat
	Theme         render.ColorTheme
	Width         int
	Height        int
	FrequencyBins int
	TimeBins      int
	MinPower      *float64
	MaxPower      *float64
	MinFrequency  *float64
	MaxFrequency  *float64
	Sources       []signal.Source
	NoAnnotations bool
}

func NewConfig() *Config {
	return &Config{
		Format:        ImagePNG,
		Theme:         render.EnhancedTheme,
		Width:         defaultWidth,
		Height:        defaultHeight,
		FrequencyBins: defaultFrequencyBins,
		TimeBins:      defaultTimeBins,
	}
}

func NewConfigFromCLI() (*Config, error) {
	return NewConfigFromArgs(os.Args[1:])
}

// NewConfigFromArgs parses command line arguments, without the program name
func NewConfigFromArgs(args []string) (*Config, error) {
	c := NewConfig()
	fs := flag.NewFlagSet("heatmap", flag.ContinueOnError)

	var imageFormat, theme, sources string
	var minPower, maxPower, minFreq, maxFreq float64
	fs.StringVar(&c.DBPath, "db", "", "Path to the database file")
	fs.Int64Var(&c.SessionID, "s", 1, "Session ID")
	fs.StringVar(&c.OutputFile, "o", "", "Path to the output file, without extension")
	fs.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	fs.StringVar(&theme, "theme", string(render.EnhancedTheme), "Color theme. [enhanced, classic, grayscale, jungle, thermal, marine, viridis]")
	fs.IntVar(&c.Width, "width", defaultWidth, "Image width in pixels")
	fs.IntVar(&c.Height, "height", defaultHeight, "Image height in pixels")
	fs.IntVar(&c.FrequencyBins, "bins", defaultFrequencyBins, "Number of frequency bins")
	fs.IntVar(&c.TimeBins, "time-bins", defaultTimeBins, "Number of time bins")
	fs.Float64Var(&minPower, "min-power", 0, "Define a manual minimum power (format nn.n)")
	fs.Float64Var(&maxPower, "max-power", 0, "Define a manual maximum power (format nn.n)")
	fs.Float64Var(&minFreq, "min-freq", 0, "Exclude samples below this frequency, MHz")
	fs.Float64Var(&maxFreq, "max-freq", 0, "Exclude samples above this frequency, MHz")
	fs.StringVar(&sources, "sources", "", "Comma separated sample sources to keep. [emission, multipath, noise, jamming]")
	fs.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable annotations such as time and frequency scales")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "min-power":
			c.MinPower = &minPower
		case "max-power":
			c.MaxPower = &maxPower
		case "min-freq":
			c.MinFrequency = &minFreq
		case "max-freq":
			c.MaxFrequency = &maxFreq
		}
	})

	for _, s := range strings.Split(sources, ",") {
		if s = strings.TrimSpace(s); s != "" {
			c.Sources = append(c.Sources, signal.Source(strings.ToLower(s)))
		}
	}

	var err error
	c.Format = ImageFormat(strings.ToLower(imageFormat))
	if c.Theme, err = render.ParseColorTheme(theme); err == nil {
		err = c.Validate()
	}
	if err != nil {
		fs.Usage()
		return nil, err
	}

	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}

func (c *Config) Validate() error {
	switch {
	case c.DBPath == "":
		return errors.New("db path is required")
	case c.SessionID <= 0:
		return errors.New("session id is required")
	case c.OutputFile == "":
		return errors.New("output file is required")
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("invalid image size: %dx%d", c.Width, c.Height)
	case c.FrequencyBins <= 0 || c.TimeBins <= 0:
		return fmt.Errorf("invalid number of bins: %d frequency, %d time", c.FrequencyBins, c.TimeBins)
	case c.MinPower != nil && c.MaxPower != nil && *c.MinPower >= *c.MaxPower:
		return fmt.Errorf("min power %v must be below max power %v", *c.MinPower, *c.MaxPower)
	case c.MinFrequency != nil && c.MaxFrequency != nil && *c.MinFrequency > *c.MaxFrequency:
		return fmt.Errorf("min frequency %v is greater than max frequency %v", *c.MinFrequency, *c.MaxFrequency)
	}

	if _, ok := validImageFormats[c.Format]; !ok {
		return fmt.Errorf("invalid image format: %s", c.Format)
	}
	for _, s := range c.Sources {
		if !s.Valid() {
			return fmt.Errorf("invalid sample source: %s", s)
		}
	}
	return nil
}
