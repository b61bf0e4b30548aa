package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/waveline/timeline/engine"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newEditCommand(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "edit <project> <script>",
		Short: "Apply a script of engine commands to a project",
		Long: `Apply a YAML list of engine commands to a project, e.g.

  - {op: moveClip, track: drums, clip: d1, delta: 4410}
  - {op: trimClip, track: drums, clip: d1, edge: end, delta: -1000}
  - {op: splitClipAtTime, track: vox, clip: v1, time: 2.5}

and print the edited project, or write it with --output. Edits the engine
refuses, like moving a clip into its neighbour, are constrained or ignored
exactly as in the editor.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("could not read script: %w", err)
			}
			var script []engine.Command
			if err := yaml.Unmarshal(data, &script); err != nil {
				return fmt.Errorf("could not parse script: %w", err)
			}
			p, e, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer e.Dispose()
			for i, c := range script {
				before := e.State().TracksVersion
				if err := e.Do(cmd.Context(), c); err != nil {
					return fmt.Errorf("command %d (%s): %w", i+1, c.Op, err)
				}
				if e.State().TracksVersion == before {
					a.logger.Debug("command changed no clips", zap.Int("index", i+1), zap.String("op", c.Op))
				}
			}
			p.Tracks = e.State().Tracks
			if output != "" {
				return p.Save(output)
			}
			out, err := p.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the edited project to this file instead of standard output")
	return cmd
}
