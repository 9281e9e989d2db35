package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/sinkmuzik/internal/shared"
	"github.com/urfave/cli/v3"
)

// Init writes a starter main.toml and the encoder profile it selects, then prepares the history database.
//
// Files that already exist are left untouched.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("config file exists, keeping it", "path", configPath)
	} else {
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.logger.Info("config file created", "path", configPath)
		r.writePlain("✓ Created %s\n", configPath)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return err
	}
	r.config = config

	dir := config.EncodersDir
	if d := cmd.String("encoders-dir"); d != "" {
		dir = d
	}

	profilePath, err := shared.CreateEncoderProfileFile(dir, config.ConversionFormat)
	switch {
	case err == nil:
		r.logger.Info("encoder profile created", "path", profilePath)
		r.writePlain("✓ Created %s\n", profilePath)
	case errors.Is(err, os.ErrExist):
		r.logger.Info("encoder profile exists, keeping it", "path", profilePath)
	default:
		return err
	}

	if err := r.openHistory(); err != nil {
		if !errors.Is(err, shared.ErrHistoryDisabled) {
			return fmt.Errorf("failed to prepare history database: %w", err)
		}
	} else {
		r.logger.Info("history database ready", "path", config.History.Path)
		r.writePlain("✓ History database ready at %s\n", config.History.Path)
	}

	r.writePlainln("Next steps:")
	r.writePlain("1. Set storage_path and music_files_template in %s\n", configPath)
	r.writePlain("2. Run 'sinkmuzik preview <music directory>' to check the planned layout\n")
	return nil
}
