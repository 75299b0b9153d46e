package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/san-kum/asciivid/internal/audio"
	"github.com/san-kum/asciivid/internal/config"
	"github.com/san-kum/asciivid/internal/frames"
	"github.com/san-kum/asciivid/internal/logging"
	"github.com/san-kum/asciivid/internal/player"
	"github.com/san-kum/asciivid/internal/storage"
	"github.com/san-kum/asciivid/internal/term"
	"github.com/san-kum/asciivid/internal/viz"
	"github.com/spf13/cobra"
)

var (
	configFile string
	dataDir    string
	framesDir  string
	audioPath  string
	playerName string
	playerBin  string
	playerLog  string
	interval   time.Duration
	minSleep   time.Duration
	record     bool
	logFile    string
	logLevel   string
	// render command
	cols int
	rows int
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stderr))
}

// execute runs the asciivid commands and returns the exit status. With no
// subcommand it plays ./frames with ./bad_apple.mp3 through cvlc. Any error
// is reported on stderr with status 1.
func execute(args []string, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(stderr, viz.StatusError.Render("error:"), err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "asciivid",
		Short:         "play image sequences as ascii video in the terminal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runPlay,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory for recorded runs")
	addPlayFlags(rootCmd)

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "play frames with audio",
		Args:  cobra.NoArgs,
		RunE:  runPlay,
	}
	addPlayFlags(playCmd)

	renderCmd := &cobra.Command{
		Use:   "render [image]",
		Short: "render a single image as ascii art",
		Args:  cobra.ExactArgs(1),
		RunE:  renderImage,
	}
	renderCmd.Flags().IntVar(&cols, "cols", 0, "output columns (0 = terminal width)")
	renderCmd.Flags().IntVar(&rows, "rows", 0, "output rows (0 = terminal height)")

	framesCmd := &cobra.Command{
		Use:   "frames [dir]",
		Short: "list frames in playback order",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listFrames,
	}

	previewCmd := &cobra.Command{
		Use:   "preview [dir]",
		Short: "step through frames interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE:  previewFrames,
	}
	previewCmd.Flags().DurationVar(&interval, "interval", config.DefaultFrameInterval, "autoplay frame interval")

	playersCmd := &cobra.Command{
		Use:   "players",
		Short: "list audio player presets",
		Args:  cobra.NoArgs,
		RunE:  listPlayers,
	}

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list recorded playbacks",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	reportCmd := &cobra.Command{
		Use:   "report [run_id]",
		Short: "pacing report for a recorded playback",
		Args:  cobra.ExactArgs(1),
		RunE:  reportRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id] [out.json]",
		Short: "export a recorded playback as json (default stdout)",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  exportRun,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage the config file",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default config",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(playCmd, renderCmd, framesCmd, previewCmd, playersCmd, runsCmd, reportCmd, exportCmd, configCmd)
	return rootCmd
}

func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&framesDir, "frames", config.DefaultFramesDir, "directory of frame images")
	cmd.Flags().StringVar(&audioPath, "audio", config.DefaultAudio, "audio file handed to the player")
	cmd.Flags().StringVar(&playerName, "player", config.DefaultPlayer, "audio player preset (see 'players')")
	cmd.Flags().StringVar(&playerBin, "player-binary", "", "audio player binary, overrides the preset")
	cmd.Flags().StringVar(&playerLog, "player-log", "", "append the audio player's output to this file")
	cmd.Flags().DurationVar(&interval, "interval", config.DefaultFrameInterval, "target frame interval")
	cmd.Flags().DurationVar(&minSleep, "min-sleep", config.DefaultMinSleep, "sleep after a frame that overran the interval")
	cmd.Flags().BoolVar(&record, "record", false, "store frame timings under the data directory")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

// loadConfig merges the config file (if any) with explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if configFile == "" || flags.Changed("frames") {
		cfg.FramesDir = framesDir
	}
	if configFile == "" || flags.Changed("audio") {
		cfg.Audio = audioPath
	}
	if configFile == "" || flags.Changed("player") {
		cfg.Player = playerName
	}
	if flags.Changed("player-binary") {
		cfg.PlayerBinary = playerBin
	}
	if flags.Changed("player-log") {
		cfg.PlayerLog = playerLog
	}
	if configFile == "" || flags.Changed("interval") {
		cfg.FrameInterval = interval
	}
	if configFile == "" || flags.Changed("min-sleep") {
		cfg.MinSleep = minSleep
	}
	if flags.Changed("record") {
		cfg.Record = record
	}
	if flags.Changed("log-file") {
		cfg.Log.Path = logFile
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if configFile == "" || flags.Changed("data") {
		cfg.DataDir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type audioProcess interface {
	Wait() error
	Kill() error
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(logging.Options{Path: cfg.Log.Path, Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	defer closer.Close()

	src, err := frames.Open(cfg.FramesDir)
	if err != nil {
		return err
	}

	sink, err := term.Open(os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var proc audioProcess = audio.Silent{}
	if cfg.AudioEnabled() {
		bin, playerArgs := cfg.PlayerCommand()
		pl := audio.Player{Binary: bin, Args: playerArgs}
		if cfg.PlayerLog != "" {
			f, err := os.OpenFile(cfg.PlayerLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("open player log: %w", err)
			}
			defer f.Close()
			pl.Output = f
		}
		p, err := pl.Start(ctx, cfg.Audio)
		if err != nil {
			return err
		}
		proc = p
		logger.Info("audio started", logging.String("player", bin), logging.Int("pid", p.Pid()))
	}

	if err := sink.HideCursor(); err != nil {
		proc.Kill()
		return err
	}
	defer sink.Restore()

	loop := player.New(player.Config{Interval: cfg.FrameInterval, MinSleep: cfg.MinSleep}, src, sink, proc).
		WithLogger(logger)

	stats, err := loop.Run(ctx)
	if err != nil {
		if loop.State() == player.Playing {
			proc.Kill()
		}
		return playbackError(ctx, err)
	}

	if cfg.Record {
		st := storage.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(src.Dir(), cfg.Audio, cfg.Player, stats)
		if err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		sink.Restore()
		fmt.Fprintln(os.Stderr, viz.Metric("run id", runID))
	}
	return nil
}

var errInterrupted = errors.New("playback interrupted")

// playbackError reports a signal-triggered stop as an interruption, whether
// it landed between frames or killed the player while draining.
func playbackError(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return errInterrupted
	}
	return err
}
