// Package cmd holds the command tree of the timeline tool; cmd/timeline
// only calls Execute.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/waveline/timeline/config"
	"github.com/waveline/timeline/engine"
	"github.com/waveline/timeline/logger"
	"github.com/waveline/timeline/project"
	"go.uber.org/zap"
)

// app carries what every subcommand needs, filled in before any of them run.
type app struct {
	configPath string
	logLevel   string

	config config.Config
	logger *zap.Logger
}

// NewRootCommand builds the complete command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "timeline",
		Short:         "Edit, inspect and play multitrack timeline projects.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides the configuration)")
	root.AddCommand(
		newInspectCommand(a),
		newEditCommand(a),
		newPlayCommand(a),
		newRenderCommand(a),
		newServeCommand(a),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command line and exits with status 1 on failure.
func Execute() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "timeline:", err)
		os.Exit(1)
	}
}

func (a *app) setup() error {
	c, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		c.Log.Level = a.logLevel
	}
	l, err := logger.New(c.Log)
	if err != nil {
		return fmt.Errorf("could not create logger: %w", err)
	}
	a.config, a.logger = c, l
	return nil
}

// open loads a project and an engine holding its tracks.
func (a *app) open(path string, opts ...engine.Option) (*project.Project, *engine.Engine, error) {
	p, err := project.Load(path, a.config.MinClipDuration)
	if err != nil {
		return nil, nil, err
	}
	e, err := a.newEngine(p, opts...)
	if err != nil {
		return nil, nil, err
	}
	return p, e, nil
}

// newEngine creates an engine running at the project's sample rate and
// holding its tracks.
func (a *app) newEngine(p *project.Project, opts ...engine.Option) (*engine.Engine, error) {
	opts = append(a.config.EngineOptions(a.logger), append(opts, engine.WithSampleRate(p.SampleRate))...)
	e, err := engine.New(opts...)
	if err != nil {
		return nil, err
	}
	e.SetTracks(p.Tracks)
	a.logger.Debug("project loaded", zap.String("path", p.Path), zap.Int("tracks", len(p.Tracks)))
	return e, nil
}
