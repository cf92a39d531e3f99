// Copyright 2025 Ryan Roden-Corrent
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// lasr is live search and replace: an interactive preview of a find/replace
// across many files, committed atomically on confirm.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rcorre/lasr/pkg/config"
	"github.com/rcorre/lasr/pkg/engine"
	"github.com/rcorre/lasr/pkg/tui"
	"github.com/rcorre/lasr/pkg/walker"
	"github.com/rcorre/lasr/pkg/xlog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

var (
	configFile string
	ignoreCase bool
	dumpConfig bool
	threads    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lasr [paths...]",
		Short: "Interactive search and replace with a live preview",
		Long: `lasr searches the given paths (default: the current directory) as you
type, previews every proposed replacement, and rewrites files atomically
when you confirm. Patterns containing $UPPERCASE metavariables match
structurally against the source syntax tree; everything else is a regex.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path (default: $XDG_CONFIG_HOME/lasr/lasr.toml)")
	rootCmd.Flags().BoolVarP(&ignoreCase, "ignore-case", "i", false, "start with case-insensitive matching")
	rootCmd.Flags().BoolVar(&dumpConfig, "dump-config", false, "write the default config to stdout and exit")
	rootCmd.Flags().IntVar(&threads, "threads", 0, "search worker count (0 = auto)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "lasr: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if dumpConfig {
		return config.Default().Dump(os.Stdout)
	}

	logger, closeLog, err := xlog.Setup()
	if err != nil {
		return errors.Errorf("initializing logging: %w", err)
	}
	defer closeLog()
	ctx := logger.WithContext(context.Background())

	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	if ignoreCase {
		cfg.IgnoreCase = true
	}
	if cmd.Flags().Changed("threads") {
		cfg.Threads = threads
	}
	if err := cfg.Validate(); err != nil {
		return errors.Errorf("invalid config: %w", err)
	}
	keys, err := cfg.Keymap()
	if err != nil {
		return err
	}

	files, err := walker.Enumerate(ctx, args, walker.Options{
		Include: cfg.Include,
		Ignore:  cfg.Ignore,
	})
	if err != nil {
		return errors.Errorf("enumerating files: %w", err)
	}
	logger.Info().Int("files", len(files)).Msg("starting")

	eng := engine.New(engine.Config{
		Workers:     cfg.Threads,
		MaxFileSize: cfg.MaxFileSize,
		AutoPairs:   cfg.AutoPairs,
		IgnoreCase:  cfg.IgnoreCase,
	}, files)

	engDone := make(chan error, 1)
	engCtx, cancelEng := context.WithCancel(ctx)
	defer cancelEng()
	go func() {
		engDone <- eng.Run(engCtx)
	}()

	report, err := tui.Run(ctx, eng, keys, cfg.Theme)
	cancelEng()
	if engErr := <-engDone; err == nil && engErr != nil && !errors.Is(engErr, context.Canceled) {
		err = engErr
	}
	if err != nil {
		return err
	}

	if report != nil {
		report.Write(os.Stdout)
		if !report.Ok() {
			return errors.New("commit completed with errors")
		}
	}
	return nil
}
