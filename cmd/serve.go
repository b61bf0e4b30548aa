package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/waveline/timeline/engine"
	"github.com/waveline/timeline/oto"
	"github.com/waveline/timeline/project"
	"github.com/waveline/timeline/server"
	"go.uber.org/zap"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string
	var watch, audio bool
	cmd := &cobra.Command{
		Use:   "serve <project>",
		Short: "Serve a project's engine over HTTP and websockets",
		Long: `Serve a project's engine. GET /state returns the engine state, POST
/commands executes one engine command and GET /ws streams state, time and
transport events while accepting commands.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			clock := engine.NewFrameClock(a.config.FrameInterval)
			defer clock.Close()
			p, err := project.Load(args[0], a.config.MinClipDuration)
			if err != nil {
				return err
			}
			opts := []engine.Option{engine.WithScheduler(clock)}
			if audio {
				opts = append(opts, engine.WithAdapter(oto.NewAdapter(p.SampleRate, a.config.AudioBuffer, a.logger)))
			}
			e, err := a.newEngine(p, opts...)
			if err != nil {
				return err
			}
			// ListenAndServe hands the engine back when it returns
			defer e.Dispose()
			s := server.New(e, clock.Frames(), a.logger)
			if watch {
				go project.Watch(ctx, args[0], a.config.MinClipDuration, func(p *project.Project, err error) {
					if err != nil {
						a.logger.Warn("project reload failed", zap.Error(err))
						return
					}
					a.logger.Info("project reloaded", zap.Int("tracks", len(p.Tracks)))
					s.Submit(ctx, func(e *engine.Engine) { e.SetTracks(p.Tracks) })
				})
			}
			if addr == "" {
				addr = a.config.Server.Addr
			}
			return s.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from the configuration)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the project when its file changes")
	cmd.Flags().BoolVar(&audio, "audio", false, "play audio through the default device")
	return cmd
}
