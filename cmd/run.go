package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/onboard-cli/internal/model"
	"github.com/sells-group/onboard-cli/internal/pipeline"
	"github.com/sells-group/onboard-cli/internal/report"
)

var (
	runDir        string
	runCandidate  string
	runFormPath   string
	runResume     string
	runIDCard     string
	runTranscript string
	runFormat     string
	runOut        string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Verify one candidate dossier",
	Long:  "Reads a dossier directory (or explicit file paths), builds the golden record, validates the onboarding form, and writes a report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildPipeline("run")
		if err != nil {
			return err
		}

		dossier, err := resolveDossier()
		if err != nil {
			return err
		}

		run, err := p.Run(cmd.Context(), dossier)
		if err != nil {
			return err
		}

		output, err := renderRun(run, runFormat, runOut)
		if err != nil {
			return err
		}
		if output != "" {
			fmt.Fprintln(cmd.OutOrStdout(), output)
		}

		zap.L().Info("run finished",
			zap.String("run_id", run.RunID),
			zap.String("risk_level", string(run.Assessment.RiskLevel)),
		)
		return nil
	},
}

// resolveDossier maps flags to input paths. --dir uses the conventional file
// names the onboarding form writes; explicit path flags override it.
func resolveDossier() (pipeline.Dossier, error) {
	d := pipeline.Dossier{
		Candidate:      runCandidate,
		FormPath:       runFormPath,
		ResumePath:     runResume,
		IDCardPath:     runIDCard,
		TranscriptPath: runTranscript,
	}

	if runDir != "" {
		pick := func(current string, names ...string) string {
			if current != "" {
				return current
			}
			for _, name := range names {
				p := filepath.Join(runDir, name)
				if _, err := os.Stat(p); err == nil {
					return p
				}
			}
			return ""
		}
		d.FormPath = pick(d.FormPath, "onboarding_form.json")
		d.ResumePath = pick(d.ResumePath, "Resume.pdf", "resume.pdf")
		d.IDCardPath = pick(d.IDCardPath, "id_card.jpeg", "id_card.jpg", "id_card.png")
		d.TranscriptPath = pick(d.TranscriptPath, "transcript.txt", "transcript.pdf")
	}

	if d.FormPath == "" {
		return d, eris.New("cmd: an onboarding form is required (--form or --dir)")
	}
	return d, nil
}

// renderRun writes the run in the requested format. File formats return an
// empty string and write to --out; json and md render to stdout unless --out
// is set.
func renderRun(run *model.RunResult, format, out string) (string, error) {
	switch format {
	case "json", "":
		data, err := report.ExportJSON(run)
		if err != nil {
			return "", err
		}
		if out != "" {
			return "", writeFile(out, data)
		}
		return string(data), nil
	case "md":
		text := report.FormatReport(run)
		if out != "" {
			return "", writeFile(out, []byte(text))
		}
		return text, nil
	case "xlsx":
		if out == "" {
			out = fmt.Sprintf("report-%s.xlsx", run.RunID)
		}
		return "", report.WriteXLSX(run, out)
	default:
		return "", eris.Errorf("cmd: unknown output format %q", format)
	}
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return eris.Wrapf(err, "cmd: write %s", path)
	}
	return nil
}

func init() {
	runCmd.Flags().StringVar(&runDir, "dir", "", "dossier directory with conventional file names")
	runCmd.Flags().StringVar(&runCandidate, "candidate", "", "candidate name (defaults to the form's name)")
	runCmd.Flags().StringVar(&runFormPath, "form", "", "onboarding form JSON path")
	runCmd.Flags().StringVar(&runResume, "resume", "", "resume PDF path")
	runCmd.Flags().StringVar(&runIDCard, "id-card", "", "ID card scan path")
	runCmd.Flags().StringVar(&runTranscript, "transcript", "", "HR transcript path")
	runCmd.Flags().StringVar(&runFormat, "format", "json", "output format: json, md, xlsx")
	runCmd.Flags().StringVar(&runOut, "out", "", "output file path")
	rootCmd.AddCommand(runCmd)
}
