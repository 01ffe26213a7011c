package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/teammaker/internal/transport/api"
)

func newHeadersCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "headers <file>",
		Short: "Print the column names and row count of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, t, err := clientAndTable(g, args[0])
			if err != nil {
				return err
			}
			if g.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), api.TableResponse{Headers: t.Header(), RowCount: t.Len()})
			}
			return writeHeaders(cmd.OutOrStdout(), t.Header(), t.Len())
		},
	}
}

func newGenerateCmd(g *globalFlags) *cobra.Command {
	f := &teamFlags{}
	cmd := &cobra.Command{
		Use:   "generate <file>",
		Short: "Generate one set of teams",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, t, err := clientAndTable(g, args[0])
			if err != nil {
				return err
			}
			b, err := builder(client, t, f)
			if err != nil {
				return err
			}
			teams, err := b.Generate(cmd.Context())
			if err != nil {
				return err //nolint:wrapcheck // SDK errors already carry context
			}
			if g.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), api.GenerateResponse{Teams: teams.Rows, Members: teams.Members})
			}
			return writeTeams(cmd.OutOrStdout(), teams.Members)
		},
	}
	addTeamFlags(cmd, f)
	return cmd
}

func newSearchCmd(g *globalFlags) *cobra.Command {
	f := &teamFlags{}
	var target, trials int
	cmd := &cobra.Command{
		Use:   "search <file>",
		Short: "Generate many sets of teams and keep the most balanced one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, t, err := clientAndTable(g, args[0])
			if err != nil {
				return err
			}
			b, err := builder(client, t, f)
			if err != nil {
				return err
			}
			res, err := b.Search(cmd.Context(), target, trials)
			if err != nil {
				return err //nolint:wrapcheck // SDK errors already carry context
			}
			if g.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), api.SearchResponse{
					Teams:        res.Rows,
					Members:      res.Members,
					Score:        res.Score,
					Trials:       res.Trials,
					BestTrial:    res.BestTrial,
					Distribution: res.Distribution,
				})
			}
			return writeSearch(cmd.OutOrStdout(), res)
		},
	}
	addTeamFlags(cmd, f)
	cmd.Flags().IntVar(&target, "target", 0, "index into --category of the category to balance")
	cmd.Flags().IntVar(&trials, "trials", 100, "number of generations to try")
	return cmd
}
