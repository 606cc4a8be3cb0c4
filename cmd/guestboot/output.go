package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-guestboot/core"
	"github.com/goliatone/go-guestboot/query"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// structured writes value as JSON or YAML. It reports false for text output.
func structured(w io.Writer, format string, value any) (bool, error) {
	switch strings.ToLower(format) {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(value)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

func writeReport(w io.Writer, report core.BootstrapReport) error {
	fmt.Fprintf(w, "Run:       %s\n", report.RunID)
	fmt.Fprintf(w, "Platform:  %s\n", report.Platform)
	if report.Selected != "" {
		fmt.Fprintf(w, "Selected:  %s (%s)\n", report.Selected, report.Reason)
	} else {
		fmt.Fprintf(w, "Selected:  none\n")
	}
	fmt.Fprintf(w, "Duration:  %s\n\n", report.Duration)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TRANSPORT\tRANK\tAVAILABLE\tREASON")
	for _, result := range report.Results {
		fmt.Fprintf(tw, "%s\t%d\t%t\t%s\n", result.Candidate.ID, result.Candidate.Rank, result.Available, result.Reason)
	}
	return tw.Flush()
}

func writeMatch(w io.Writer, result query.MatchResult) {
	fmt.Fprintf(w, "%s: %s\n", result.Subject, result.Outcome())
	if result.Relocation != nil {
		fmt.Fprintf(w, "  relocation:  %s (%s)\n", result.Relocation.Source, result.Relocation.Rationale)
		if result.Destination != "" {
			fmt.Fprintf(w, "  destination: %s\n", result.Destination)
		}
		if result.Relocation.Note != "" {
			fmt.Fprintf(w, "  note:        %s\n", result.Relocation.Note)
		}
	}
	if result.Exclusion != nil {
		fmt.Fprintf(w, "  exclusion:   %s (%s)\n", result.Exclusion.Coordinate, result.Exclusion.Reason)
	}
}
