package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theplant/admintools/filter"
	"github.com/theplant/admintools/survey"
)

func newSurveyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Manage surveys",
	}
	cmd.AddCommand(
		newSurveyListCmd(a),
		newSurveyAddCmd(a),
		newSurveyUpdateCmd(a),
		newSurveyRemoveCmd(a),
	)
	return cmd
}

func (a *app) surveys(ctx context.Context) (*survey.Repository, error) {
	db, err := a.gormDB()
	if err != nil {
		return nil, err
	}
	repo := survey.NewRepository(db, queryHooks[*survey.Survey](a, survey.Schema.Collection)...)
	created, err := repo.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	if created {
		a.logger.Info("created table", zap.String("table", survey.Schema.Collection))
	}
	return repo, nil
}

func newSurveyListCmd(a *app) *cobra.Command {
	var name, resultsKey, liveFrom, liveTo string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List surveys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &survey.Filter{}
			if name != "" {
				f.Name = &filter.String{StartsWith: &name}
			}
			if resultsKey != "" {
				f.ResultsKey = &filter.String{Eq: &resultsKey}
			}
			from, err := parseDate("live-from", liveFrom)
			if err != nil {
				return err
			}
			to, err := parseDate("live-to", liveTo)
			if err != nil {
				return err
			}
			if from != nil || to != nil {
				f.LiveFrom = &filter.Time{Gte: from, Lte: to}
			}

			repo, err := a.surveys(cmd.Context())
			if err != nil {
				return err
			}
			list, err := repo.Search(cmd.Context(), f)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), list, surveyHeaders, lo.Map(list, surveyRow))
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&name, "name", "", "name prefix")
	flags.StringVar(&resultsKey, "results-key", "", "results key")
	flags.StringVar(&liveFrom, "live-from", "", "live on or after ("+dateLayout+")")
	flags.StringVar(&liveTo, "live-to", "", "live on or before ("+dateLayout+")")
	return cmd
}

type surveyFlags struct {
	in       survey.Input
	liveFrom string
}

func (f *surveyFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.in.Name, "name", "", "survey name")
	flags.StringVar(&f.in.Definition, "definition", "", "survey definition, a JSON object")
	flags.StringVar(&f.liveFrom, "live-from", "", "go live date ("+dateLayout+" or RFC 3339)")
	flags.StringVar(&f.in.ResultsKey, "results-key", "", "results key")
	flags.StringVar(&f.in.Comments, "comments", "", "comments")
}

func (f *surveyFlags) input() (*survey.Input, error) {
	t, err := parseDate("live-from", f.liveFrom)
	if err != nil {
		return nil, err
	}
	in := f.in
	if t != nil {
		in.LiveFrom = *t
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &in, nil
}

func newSurveyAddCmd(a *app) *cobra.Command {
	f := &surveyFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a survey",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.input()
			if err != nil {
				return err
			}
			repo, err := a.surveys(cmd.Context())
			if err != nil {
				return err
			}
			s, err := repo.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), s, surveyHeaders, [][]string{surveyRow(s, 0)})
		},
	}
	f.register(cmd)
	return cmd
}

func newSurveyUpdateCmd(a *app) *cobra.Command {
	f := &surveyFlags{}
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a survey",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			in, err := f.input()
			if err != nil {
				return err
			}
			repo, err := a.surveys(cmd.Context())
			if err != nil {
				return err
			}
			s, err := repo.Update(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), s, surveyHeaders, [][]string{surveyRow(s, 0)})
		},
	}
	f.register(cmd)
	return cmd
}

func newSurveyRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Remove a survey",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			repo, err := a.surveys(cmd.Context())
			if err != nil {
				return err
			}
			if err := repo.Delete(cmd.Context(), id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed survey %d\n", id)
			return err
		},
	}
}

var surveyHeaders = []string{"ID", "Name", "Live From", "Results Key", "Comments", "Definition"}

func surveyRow(s *survey.Survey, _ int) []string {
	return []string{
		strconv.FormatInt(s.ID, 10),
		s.Name,
		s.LiveFrom.Format(dateLayout),
		s.ResultsKey,
		s.Comments,
		string(s.Definition),
	}
}
