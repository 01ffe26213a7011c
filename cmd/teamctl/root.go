package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/teammaker"
	"github.com/kailas-cloud/teammaker/internal/domain/table"
	logpkg "github.com/kailas-cloud/teammaker/internal/logger"
	"github.com/kailas-cloud/teammaker/internal/version"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// globalFlags are shared by every command.
type globalFlags struct {
	charset   string
	delimiter string
	seed      uint64
	output    string
	logLevel  string
}

// teamFlags describe one generation.
type teamFlags struct {
	teams      int
	strategy   string
	categories []string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "teamctl",
		Short:         "Split a table of people into balanced teams",
		Version:       fmt.Sprintf("%s (%s)", version.Version, version.Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if g.output != outputText && g.output != outputJSON {
				return fmt.Errorf("--output must be %q or %q, got %q", outputText, outputJSON, g.output)
			}
			return nil
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.charset, "charset", "", "IANA charset of the input (default UTF-8)")
	pf.StringVar(&g.delimiter, "delimiter", "", `field delimiter: one character or "tab" (default: sniffed)`)
	pf.Uint64Var(&g.seed, "seed", 0, "random seed for reproducible teams (0 = random)")
	pf.StringVarP(&g.output, "output", "o", outputText, "output format: text or json")
	pf.StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(newHeadersCmd(g), newGenerateCmd(g), newSearchCmd(g))
	return root
}

func addTeamFlags(cmd *cobra.Command, f *teamFlags) {
	fl := cmd.Flags()
	fl.IntVarP(&f.teams, "teams", "k", 0, "number of teams")
	fl.StringVarP(&f.strategy, "strategy", "s", string(teammaker.Random),
		"strategy: random, categorical or random_categorical")
	fl.StringArrayVarP(&f.categories, "category", "c", nil,
		"category column as idx[:weight[:name]], repeatable; earlier wins priority ties")
	_ = cmd.MarkFlagRequired("teams")
}

// clientAndTable builds an SDK client from the global flags and loads path.
func clientAndTable(g *globalFlags, path string) (*teammaker.Client, *teammaker.Table, error) {
	logger, err := logpkg.NewLogger("local", g.logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	client, err := teammaker.New(teammaker.WithSeed(g.seed), teammaker.WithLogger(logger.Named("teamctl")))
	if err != nil {
		return nil, nil, fmt.Errorf("create client: %w", err)
	}

	delim, err := table.ParseDelimiter(g.delimiter)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path) //nolint:gosec // path is the user's own input file
	if err != nil {
		return nil, nil, fmt.Errorf("open table: %w", err)
	}
	defer func() { _ = f.Close() }()

	t, err := client.LoadTable(f, teammaker.WithCharset(g.charset), teammaker.WithDelimiter(delim))
	if err != nil {
		return nil, nil, err //nolint:wrapcheck // SDK errors already carry context
	}
	logger.Debug("Table loaded", zap.String("path", path), zap.Int("rows", t.Len()))
	return client, t, nil
}

// builder applies team flags to a new TeamsBuilder.
func builder(client *teammaker.Client, t *teammaker.Table, f *teamFlags) (*teammaker.TeamsBuilder, error) {
	b := client.Teams(t).Count(f.teams).Strategy(teammaker.Strategy(f.strategy))
	for _, raw := range f.categories {
		column, opts, err := parseCategory(raw)
		if err != nil {
			return nil, err
		}
		b.Category(column, opts...)
	}
	return b, nil
}

// parseCategory parses idx[:weight[:name]].
func parseCategory(raw string) (int, []teammaker.CategoryOption, error) {
	parts := strings.SplitN(raw, ":", 3)
	column, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, nil, fmt.Errorf("category %q: column must be an integer", raw)
	}
	var opts []teammaker.CategoryOption
	if len(parts) > 1 && parts[1] != "" {
		w, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0, nil, fmt.Errorf("category %q: weight must be a number", raw)
		}
		opts = append(opts, teammaker.Priority(w))
	}
	if len(parts) > 2 {
		if parts[2] == "" {
			return 0, nil, errors.New("category " + strconv.Quote(raw) + ": empty name")
		}
		opts = append(opts, teammaker.Named(parts[2]))
	}
	return column, opts, nil
}
