package cmd

import (
	"fmt"
	"os"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/spf13/cobra"
	"github.com/waveline/timeline/engine"
)

const defaultInspectTemplate = `{{ .Path }}: {{ len .State.Tracks }} tracks, {{ printf "%.3f" .State.Duration }} s at {{ .SampleRate }} Hz
{{- range .State.Tracks }}
{{ .ID }} {{ .Name | default "-" | quote }} volume {{ .Volume }}{{ if .Muted }} muted{{ end }}{{ if .Soloed }} solo{{ end }}
{{- range .Clips }}
  {{ .ID | trunc 12 | printf "%-12s" }} {{ .StartSample | printf "%10d" }} +{{ .DurationSamples | printf "%-10d" }} {{ .Source | default "(no source)" }}
{{- end }}
{{- end }}
`

// inspectData is what inspect templates are executed on.
type inspectData struct {
	Path       string
	SampleRate int
	State      engine.State
}

func newInspectCommand(a *app) *cobra.Command {
	var text, file string
	cmd := &cobra.Command{
		Use:   "inspect <project>",
		Short: "Print the tracks and clips of a project",
		Long: `Print the tracks and clips of a project. The output is produced by a Go
text/template executed on {Path, SampleRate, State}; the sprig functions are
available.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := defaultInspectTemplate
			switch {
			case text != "":
				src = text
			case file != "":
				b, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("could not read template: %w", err)
				}
				src = string(b)
			}
			tmpl, err := template.New("inspect").Funcs(sprig.TxtFuncMap()).Parse(src)
			if err != nil {
				return fmt.Errorf("could not parse template: %w", err)
			}
			p, e, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer e.Dispose()
			data := inspectData{Path: p.Path, SampleRate: p.SampleRate, State: e.State()}
			if err := tmpl.Execute(cmd.OutOrStdout(), data); err != nil {
				return fmt.Errorf("could not execute template: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&text, "template", "t", "", "inline template")
	cmd.Flags().StringVarP(&file, "template-file", "f", "", "template file")
	return cmd
}
