package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/cyp0633/librecur/tracker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the state shared by every command of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     AppConfig
	logger  *slog.Logger
	clock   func() time.Time
	stderr  io.Writer
}

func newApp() *app {
	return &app{
		v:      viper.New(),
		clock:  time.Now,
		stderr: os.Stderr,
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "librecur",
		Short: "librecur keeps track of recurring household tasks.",
		Long: `librecur tracks recurring tasks such as feeding pets, watering plants or
cleaning. Each task has a daily, weekly or monthly rule; librecur tells you
what is due, records completions and publishes the tasks as a calendar feed.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is $HOME/.librecur.yaml or ./.librecur.yaml)")
	flags.BoolP("verbose", "v", false, "enable verbose output")
	flags.StringP("file", "f", "", "task file (default librecur.yaml)")

	// Bind persistent flags to Viper
	_ = a.v.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = a.v.BindPFlag("data.file", flags.Lookup("file"))

	root.AddCommand(
		a.initCmd(),
		a.addCmd(),
		a.completeCmd(),
		a.deleteCmd(),
		a.dueCmd(),
		a.upcomingCmd(),
		a.nextCmd(),
		a.describeCmd(),
		a.searchCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.serveCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := loadConfig(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	a.logger.Debug("configuration loaded", "config_file", a.v.ConfigFileUsed(), "data_file", cfg.Data.File)
	return nil
}

func (a *app) store() fileStore {
	return fileStore{path: a.cfg.Data.File, format: a.cfg.Data.Format}
}

func (a *app) open() (*tracker.Tracker, error) {
	return a.store().open(a.cfg.Tracker, a.logger, a.clock)
}

// mutate opens the tracker, applies fn and saves the result.
func (a *app) mutate(fn func(tr *tracker.Tracker) error) error {
	tr, err := a.open()
	if err != nil {
		return err
	}
	defer tr.Close()

	if err := fn(tr); err != nil {
		return err
	}
	return a.store().save(tr)
}

func (a *app) today() recurrence.Day {
	return recurrence.DayOf(a.clock())
}

// dayFlag parses a --date style flag, defaulting to today.
func (a *app) dayFlag(cmd *cobra.Command, name string) (recurrence.Day, error) {
	s, err := cmd.Flags().GetString(name)
	if err != nil {
		return recurrence.Day{}, err
	}
	if s == "" || s == "today" {
		return a.today(), nil
	}
	if s == "tomorrow" {
		return a.today().AddDays(1), nil
	}
	d, err := recurrence.ParseDay(s)
	if err != nil {
		return recurrence.Day{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}
