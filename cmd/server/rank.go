package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"clinic-similar-cases/internal/cases"
	"clinic-similar-cases/internal/config"
	"clinic-similar-cases/internal/report"
	"clinic-similar-cases/internal/similarity"
)

func rankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank historical cases from a JSON file with the local scorer",
		RunE: func(cmd *cobra.Command, args []string) error {
			symptoms, _ := cmd.Flags().GetString("symptoms")
			casesFile, _ := cmd.Flags().GetString("cases")
			asJSON, _ := cmd.Flags().GetBool("json")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.ValidateThresholds(); err != nil {
				return err
			}

			historical, err := readCases(casesFile)
			if err != nil {
				return err
			}

			a := rankFile(similarity.NewRanker(cfg.Thresholds()), symptoms, historical)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(a)
			}
			printSummary(cmd.OutOrStdout(), a)
			return nil
		},
	}
	cmd.Flags().String("symptoms", "", "Current symptom description")
	cmd.Flags().String("cases", "", "Path to a JSON array of historical cases")
	cmd.Flags().Bool("json", false, "Print the ranked cases as JSON")
	_ = cmd.MarkFlagRequired("symptoms")
	_ = cmd.MarkFlagRequired("cases")
	return cmd
}

func readCases(path string) ([]similarity.HistoricalCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cases: %w", err)
	}
	var historical []similarity.HistoricalCase
	if err := json.Unmarshal(data, &historical); err != nil {
		return nil, fmt.Errorf("parse cases %s: %w", path, err)
	}
	return historical, nil
}

func rankFile(ranker *similarity.Ranker, symptoms string, historical []similarity.HistoricalCase) *cases.Analysis {
	return &cases.Analysis{
		Symptoms:    symptoms,
		Cases:       ranker.Rank(symptoms, historical),
		Fallback:    true,
		Source:      cases.SourceHeuristic,
		GeneratedAt: time.Now(),
	}
}

var confidenceColors = map[similarity.Level]*color.Color{
	similarity.LevelHigh:   color.New(color.FgGreen, color.Bold),
	similarity.LevelMedium: color.New(color.FgYellow),
	similarity.LevelLow:    color.New(color.FgRed),
}

func printSummary(w io.Writer, a *cases.Analysis) {
	title := color.New(color.FgCyan, color.Bold)
	heading := color.New(color.Bold)
	note := color.New(color.Faint)

	for _, l := range report.Summary(a) {
		switch l.Kind {
		case report.LineTitle:
			title.Fprintln(w, l.Text)
		case report.LineHeading:
			fmt.Fprintln(w)
			heading.Fprintln(w, l.Text)
		case report.LineCase:
			c, ok := confidenceColors[l.Confidence]
			if !ok {
				c = color.New(color.Reset)
			}
			c.Fprintln(w, "   "+l.Text)
		case report.LineNote:
			note.Fprintln(w, l.Text)
		default:
			fmt.Fprintln(w, "   "+l.Text)
		}
	}
}
