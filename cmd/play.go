package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/waveline/timeline/engine"
	"github.com/waveline/timeline/oto"
	"github.com/waveline/timeline/project"
)

func newPlayCommand(a *app) *cobra.Command {
	var from, to float64
	var quiet bool
	cmd := &cobra.Command{
		Use:   "play <project>",
		Short: "Play a project through the default audio device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			clock := engine.NewFrameClock(a.config.FrameInterval)
			defer clock.Close()
			p, err := project.Load(args[0], a.config.MinClipDuration)
			if err != nil {
				return err
			}
			adapter := oto.NewAdapter(p.SampleRate, a.config.AudioBuffer, a.logger)
			e, err := a.newEngine(p, engine.WithAdapter(adapter), engine.WithScheduler(clock))
			if err != nil {
				return err
			}
			defer e.Dispose()
			if err := e.Init(ctx); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			duration := e.State().Duration
			if !quiet {
				e.On(engine.TimeUpdate, func(ev engine.Event) {
					fmt.Fprintf(out, "\r%7.2f / %.2f s", ev.Time, duration)
				})
			}
			finished := make(chan struct{})
			e.On(engine.PauseEvent, func(engine.Event) {
				select {
				case <-finished:
				default:
					close(finished)
				}
			})
			end := to
			if end <= 0 {
				end = -1
			}
			if err := e.PlayRange(ctx, from, end); err != nil {
				return err
			}
			for {
				select {
				case frame := <-clock.Frames():
					frame()
				case <-finished:
					fmt.Fprintln(out)
					return nil
				case <-ctx.Done():
					e.Stop()
					fmt.Fprintln(out)
					return nil
				}
			}
		},
	}
	cmd.Flags().Float64Var(&from, "from", 0, "start position in seconds")
	cmd.Flags().Float64Var(&to, "to", 0, "end position in seconds; 0 plays to the end")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print the playback position")
	return cmd
}
