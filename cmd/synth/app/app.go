package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/drone-signal-synth/internal/export"
	"github.com/roman-kulish/drone-signal-synth/internal/profile"
	"github.com/roman-kulish/drone-signal-synth/internal/signal"
	"github.com/roman-kulish/drone-signal-synth/internal/storage"
	"github.com/roman-kulish/drone-signal-synth/internal/synth"
)

// Run generates one batch of samples and writes it to the configured sinks.
// The column selection is checked before anything is generated.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	columns, err := export.ParseColumns(config.Output.Columns)
	if err != nil {
		return err
	}

	profiles, err := loadProfiles(config.Profiles)
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	runConfig, err := config.Run.SynthConfig()
	if err != nil {
		return fmt.Errorf("invalid run configuration: %w", err)
	}

	options := []func(*synth.Generator){synth.WithLogger(logger)}
	if config.Settings.Seed != nil {
		options = append(options, synth.WithSeed(*config.Settings.Seed))
	}

	samples, err := synth.NewGenerator(profiles, runConfig, options...).Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to generate samples: %w", err)
	}

	if err = writeCSV(config.Output.CSV, columns, samples); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	logger.Info("samples written",
		slog.String("path", config.Output.CSV),
		slog.String("rows", humanize.Comma(int64(len(samples)))))

	if config.Output.DataDirectory == "" {
		return nil
	}

	dbPath, sessionID, err := storeRun(ctx, config.Output.DataDirectory, &config.Run, samples)
	if err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}
	logger.Info("run stored", slog.String("path", dbPath), slog.Int64("session", sessionID))

	return nil
}

func loadProfiles(path string) (*profile.Store, error) {
	if path == "" {
		return profile.Default()
	}
	return profile.LoadFile(path)
}

func writeCSV(path string, columns []export.Column, samples []signal.Sample) (err error) {
	f, err := export.Create(path, columns)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	return f.Write(samples...)
}

func storeRun(ctx context.Context, dir string, run *RunConfig, samples []signal.Sample) (dbPath string, sessionID int64, err error) {
	dbPath, err = databasePath(dir)
	if err != nil {
		return
	}

	store := storage.NewSqliteStore(dbPath)
	defer func() {
		if cErr := store.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	if sessionID, err = store.CreateSession(ctx, run.Drone, run); err != nil {
		err = fmt.Errorf("creating session: %w", err)
		return
	}
	if err = store.StoreSamples(ctx, sessionID, samples); err != nil {
		err = fmt.Errorf("storing samples: %w", err)
	}
	return
}

// databasePath returns a timestamped database file name inside dir, which
// must exist
func databasePath(dir string) (string, error) {
	stat, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("storage directory '%s' does not exist: %w", dir, err)
		}
		return "", err
	}
	if !stat.IsDir() {
		return "", fmt.Errorf("invalid storage directory '%s'", dir)
	}

	return filepath.Join(dir, fmt.Sprintf("synth_session_%s.sqlite", time.Now().UTC().Format("20060102_150405"))), nil
}
