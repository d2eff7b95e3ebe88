package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mormel/keyfall/internal/config"
	ebitenrender "github.com/mormel/keyfall/internal/render/ebiten"
	"github.com/mormel/keyfall/internal/scene"
)

var (
	configPath string
	watch      bool
	verbose    bool
	seed       uint64
	width      int
	height     int
	policy     string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "keyfall",
	Short: "Falling, glowing key tiles for every key you press",
	Long: `keyfall spawns a glowing key tile for every key press and click.
Tiles fly up from below the window, fall back under gravity and disappear
off the bottom edge. The window title is spelled out in the same tiles.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults are embedded)")
	rootCmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the config file when it changes")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")
	rootCmd.Flags().IntVar(&width, "width", 0, "window width, overrides the config")
	rootCmd.Flags().IntVar(&height, "height", 0, "window height, overrides the config")
	rootCmd.Flags().StringVar(&policy, "policy", "", "bounds policy: speed_gated or margin")
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func run(cmd *cobra.Command, args []string) error {
	over := config.Overrides{Width: width, Height: height, Policy: policy}
	cfg, err := config.Load(configPath, over)
	if err != nil {
		return err
	}

	if seed == 0 {
		seed = rand.Uint64()
	}
	sc := scene.New(cfg,
		scene.WithLogger(logger),
		scene.WithRand(rand.New(rand.NewPCG(seed, seed))))
	defer sc.Close()

	logger.Info("starting",
		zap.String("config", configPath),
		zap.Uint64("seed", seed),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if watch {
		if configPath == "" {
			return errors.New("--watch needs --config")
		}
		w, err := config.NewWatcher(configPath, over, logger)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()

		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case next := <-w.Updates():
					sc.ApplyConfig(next)
				}
			}
		}()
	}

	engine := ebitenrender.NewEngine()
	engine.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	engine.SetWindowTitle(cfg.Window.Title)
	engine.SetWindowResizable(cfg.Window.Resizable)
	engine.SetTPS(cfg.Window.TPS)

	if err := engine.RunGame(sc); err != nil {
		return fmt.Errorf("game loop: %w", err)
	}
	st := sc.Stats()
	logger.Info("stopped", zap.Uint64("frames", st.Frames), zap.Uint64("spawned", st.Spawned))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("keyfall failed", zap.Error(err))
			_ = logger.Sync()
		}
		os.Exit(1)
	}
}
