package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kailas-cloud/teammaker"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

func writeHeaders(w io.Writer, header []string, rows int) error {
	for i, h := range header {
		if _, err := fmt.Fprintf(w, "%d\t%s\n", i, h); err != nil {
			return fmt.Errorf("write headers: %w", err)
		}
	}
	_, err := fmt.Fprintf(w, "%d rows\n", rows)
	return err //nolint:wrapcheck // plain write to stdout
}

// writeTeams prints one "Team N: name, name" line per team.
func writeTeams(w io.Writer, members [][]string) error {
	for i, names := range members {
		if _, err := fmt.Fprintf(w, "Team %d: %s\n", i+1, strings.Join(names, ", ")); err != nil {
			return fmt.Errorf("write teams: %w", err)
		}
	}
	return nil
}

func writeSearch(w io.Writer, res *teammaker.SearchResult) error {
	if err := writeTeams(w, res.Members); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\nscore %.4f (best of %d trials, trial %d)\n",
		res.Score, res.Trials, res.BestTrial+1); err != nil {
		return fmt.Errorf("write score: %w", err)
	}
	for i, dist := range res.Distribution {
		values := make([]string, 0, len(dist))
		for v := range dist {
			values = append(values, v)
		}
		sort.Strings(values)
		parts := make([]string, len(values))
		for j, v := range values {
			parts[j] = fmt.Sprintf("%s=%.2f", v, dist[v])
		}
		if _, err := fmt.Fprintf(w, "Team %d: %s\n", i+1, strings.Join(parts, " ")); err != nil {
			return fmt.Errorf("write distribution: %w", err)
		}
	}
	return nil
}
