package cmd

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"
	"github.com/waveline/timeline"
	"github.com/waveline/timeline/mixer"
	"github.com/waveline/timeline/project"
	"go.uber.org/zap"
)

const renderChunk = 4096

// render mixes the project between from and to seconds; to <= 0 means the
// end of the last clip.
func render(p *project.Project, from, to float64) timeline.AudioBuffer {
	m := mixer.New(p.SampleRate)
	m.SetTracks(p.Tracks)
	m.Seek(int64(math.Round(from * float64(p.SampleRate))))
	if to > 0 {
		m.SetEnd(int64(math.Round(to * float64(p.SampleRate))))
	}
	var ret timeline.AudioBuffer
	chunk := make(timeline.AudioBuffer, renderChunk)
	for !m.Done() {
		n := m.Render(chunk)
		ret = append(ret, chunk[:n]...)
	}
	return ret
}

func newRenderCommand(a *app) *cobra.Command {
	var output string
	var from, to float64
	var raw, pcm16 bool
	cmd := &cobra.Command{
		Use:   "render <project>",
		Short: "Mix a project down to a .wav or .raw file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Load(args[0], a.config.MinClipDuration)
			if err != nil {
				return err
			}
			buf := render(p, from, to)
			var data []byte
			if raw {
				data, err = buf.Raw(pcm16)
			} else {
				data, err = buf.Wav(p.SampleRate, pcm16)
			}
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("could not write %s: %w", output, err)
			}
			a.logger.Info("rendered", zap.String("output", output), zap.Int("frames", len(buf)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file; standard output if empty")
	cmd.Flags().Float64Var(&from, "from", 0, "start position in seconds")
	cmd.Flags().Float64Var(&to, "to", 0, "end position in seconds; 0 renders to the end")
	cmd.Flags().BoolVarP(&raw, "raw", "r", false, "write raw samples without a .wav header")
	cmd.Flags().BoolVar(&pcm16, "pcm16", false, "write 16-bit integer samples instead of float32")
	return cmd
}
