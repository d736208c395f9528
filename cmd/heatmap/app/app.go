package app

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/drone-signal-synth/internal/render"
	"github.com/roman-kulish/drone-signal-synth/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	spec, session, err := readSpectrum(ctx, store, config, logger)
	if err != nil {
		return err
	}

	renderConfig := RenderConfig{
		Width:         config.Width,
		Height:        config.Height,
		TimeBins:      config.TimeBins,
		FrequencyBins: config.FrequencyBins,
		ColorTheme:    config.Theme,
		MinPower:      config.MinPower,
		MaxPower:      config.MaxPower,
		NoAnnotations: config.NoAnnotations,
		Title:         fmt.Sprintf("%s, session %d", session.DroneID, session.ID),
	}

	logger.Info("rendering spectrum",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.String("theme", string(config.Theme)),
			slog.Int("width", config.Width),
			slog.Int("height", config.Height),
		))

	img, err := Render(spec, renderConfig)
	if err != nil {
		return fmt.Errorf("rendering spectrum: %w", err)
	}

	return writeImage(config.OutputFile, config.Format, img)
}

func readSpectrum(ctx context.Context, store *storage.SqliteStore, config *Config, logger *slog.Logger) (*SpectrumData, *storage.Session, error) {
	var opts []storage.ReaderOption
	var filters []any
	if config.MinFrequency != nil {
		opts = append(opts, storage.WithMinFreq(*config.MinFrequency))
		filters = append(filters, slog.String("minFreq", render.FormatMHz(*config.MinFrequency)))
	}
	if config.MaxFrequency != nil {
		opts = append(opts, storage.WithMaxFreq(*config.MaxFrequency))
		filters = append(filters, slog.String("maxFreq", render.FormatMHz(*config.MaxFrequency)))
	}
	if len(config.Sources) > 0 {
		opts = append(opts, storage.WithSources(config.Sources...))
		filters = append(filters, slog.Any("sources", config.Sources))
	}

	logger.Info("iterator configuration", filters...)

	iter, err := store.ReadSamples(ctx, config.SessionID, opts...)
	if err != nil {
		return nil, nil, err
	}
	defer iter.Close()

	spec := NewSpectrumData()
	for iter.Next(ctx) {
		spec.Update(iter.Current())
	}
	if err = iter.Error(); err != nil {
		return nil, nil, err
	}

	bounds := spec.Histogram.PercentileBounds()
	logger.Info("finished reading samples",
		slog.Group("stats",
			slog.String("drone", iter.Session().DroneID),
			slog.String("samples", humanize.Comma(int64(spec.Count()))),
			slog.String("duration", render.FormatSeconds(spec.Time.Max)),
			slog.String("minFreq", render.FormatMHz(spec.Frequency.Min)),
			slog.String("maxFreq", render.FormatMHz(spec.Frequency.Max)),
			slog.String("minPower", render.FormatDBm(bounds.Min)),
			slog.String("maxPower", render.FormatDBm(bounds.Max)),
		))

	return spec, iter.Session(), nil
}

func writeImage(path string, format ImageFormat, img image.Image) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := out.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	switch format {
	case ImageJPEG:
		return jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	default:
		return png.Encode(out, img)
	}
}
