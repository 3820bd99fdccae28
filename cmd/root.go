package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"midi-live-vis/capture"
	"midi-live-vis/chart"
	"midi-live-vis/config"
	"midi-live-vis/debug"
	"midi-live-vis/midi"
	"midi-live-vis/server"
	"midi-live-vis/theme"
	"midi-live-vis/tui"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "midi-live-vis",
		Short: "Live pitch-time chart for MIDI input",
		Long: `Listens to every connected MIDI input and draws the notes you play as a
scrolling pitch-vs-time chart with an overview of the whole session.
Devices can be plugged in at any time.`,
		SilenceUsage: true,
		RunE:         runLive,
	}

	f := root.PersistentFlags()
	f.String("config", "", "config file (default ~/.config/midi-live-vis/config.json)")
	f.Bool("debug", false, "write a debug log next to the config file")
	f.Float64("window", 0, "seconds shown in the main chart")
	f.Int("fps", 0, "frames per second")
	f.Bool("all", false, "show the whole session instead of the last window")
	f.String("labels", "", "pitch axis labels: pitch or note")
	f.String("palette", "", "channel colors: builtin palette name or a .gpl file")
	f.StringSlice("include", nil, "only connect ports whose name contains one of these")
	f.StringSlice("exclude", nil, "never connect ports whose name contains one of these")
	f.String("http", "", "serve the live session as JSON on this address, e.g. :8080")

	root.AddCommand(newPortsCmd(), newReplayCmd())
	return root
}

// Execute runs the CLI until it finishes or is interrupted
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}

// settings holds the config from disk and the effective config with flags
// applied. Only file preferences are written back.
type settings struct {
	file *config.Config
	cfg  *config.Config
	path string
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	if path == "" {
		var err error
		if path, err = config.ConfigPath(); err != nil {
			return nil, fmt.Errorf("config path: %w", err)
		}
	}

	if on, _ := flags.GetBool("debug"); on {
		logPath, err := config.LogPath()
		if err != nil {
			return nil, fmt.Errorf("log path: %w", err)
		}
		if err := debug.Enable(logPath); err != nil {
			return nil, err
		}
	}

	fileCfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, err
	}

	cfg := *fileCfg
	if flags.Changed("window") {
		cfg.View.WindowSeconds, _ = flags.GetFloat64("window")
	}
	if flags.Changed("fps") {
		cfg.View.FPS, _ = flags.GetInt("fps")
	}
	if flags.Changed("all") {
		cfg.View.ShowAllTime, _ = flags.GetBool("all")
	}
	if flags.Changed("labels") {
		cfg.View.Labels, _ = flags.GetString("labels")
	}
	if flags.Changed("palette") {
		cfg.View.Palette, _ = flags.GetString("palette")
	}
	if flags.Changed("include") {
		cfg.Input.Include, _ = flags.GetStringSlice("include")
	}
	if flags.Changed("exclude") {
		cfg.Input.Exclude, _ = flags.GetStringSlice("exclude")
	}
	if flags.Changed("http") {
		cfg.HTTPAddr, _ = flags.GetString("http")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	debug.Log("config", "loaded %s", path)
	return &settings{file: fileCfg, cfg: &cfg, path: path}, nil
}

func chartOptions(cfg *config.Config) (chart.Options, error) {
	labels, err := chart.ParseLabelMode(cfg.View.Labels)
	if err != nil {
		return chart.Options{}, err
	}
	return chart.Options{
		Window:           cfg.View.WindowSeconds,
		ShowAllTime:      cfg.View.ShowAllTime,
		Labels:           labels,
		OverviewFraction: cfg.View.OverviewFraction,
	}, nil
}

// loadTheme keeps the plasma chrome and swaps the channel colors
func loadTheme(cfg *config.Config) (*theme.Theme, error) {
	if cfg.View.Palette == "" {
		return theme.Default(), nil
	}
	channels, err := theme.Open(cfg.View.Palette)
	if err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}
	return theme.New(theme.MustBuiltin("plasma"), channels), nil
}

func runLive(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	defer debug.Disable()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	deviceMgr := midi.NewDeviceManager(midi.Options{
		Include:      s.cfg.Input.Include,
		Exclude:      s.cfg.Input.Exclude,
		PollInterval: s.cfg.PollInterval(),
	})
	go deviceMgr.Run(ctx)

	return runView(ctx, s, deviceMgr, nil)
}

// runView starts the optional JSON server and blocks in the TUI
func runView(ctx context.Context, s *settings, deviceMgr *midi.DeviceManager, extra *midi.FileController) error {
	opts, err := chartOptions(s.cfg)
	if err != nil {
		return err
	}
	th, err := loadTheme(s.cfg)
	if err != nil {
		return err
	}

	rec := capture.NewRecorder(nil)
	debug.Log("session", "started %s", rec.ID)

	if s.cfg.HTTPAddr != "" {
		go func() {
			if err := server.Run(ctx, s.cfg.HTTPAddr, rec); err != nil {
				debug.Warn("http", "server stopped: %v", err)
			}
		}()
	}

	saver := config.NewSaver(s.file, s.path, 500*time.Millisecond)
	m := tui.NewModel(rec, deviceMgr, th, opts, s.cfg.View.FPS, saver)
	if extra != nil {
		m.AddController(extra)
		extra.Start()
		defer extra.Close()
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
