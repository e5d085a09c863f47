package main

import (
	"context"
	"fmt"
	"io"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-cvbuilder/command"
	"github.com/goliatone/go-cvbuilder/cv"
	"github.com/goliatone/go-cvbuilder/query"
)

func newValidateCmd(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a stored document and list problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), state, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("document", "", "document id to validate")
	return cmd
}

func runValidate(ctx context.Context, state *cliState, stdout io.Writer) error {
	rt, err := openRuntime(ctx, state.cfg, state.logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	subs, err := command.RegisterHandlers(nil, command.Dependencies{Store: rt.store, Layouts: rt.layouts})
	if err != nil {
		return err
	}
	defer unsubscribe(subs)

	if err := dispatcher.Dispatch(ctx, command.LoadDocument{DocumentID: state.cfg.Storage.DocumentID}); err != nil {
		return err
	}
	report, err := dispatcher.Query[query.ValidateDocument, query.ValidationReport](ctx, query.ValidateDocument{})
	if err != nil {
		return err
	}
	if report.Valid {
		fmt.Fprintf(stdout, "%s: valid\n", report.DocumentID)
		return nil
	}
	for _, problem := range report.Fields {
		fmt.Fprintf(stdout, "%s: %s\n", problem.Field, problem.Message)
	}
	return cv.NewError(cv.KindValidation, fmt.Sprintf("document %s has %d problems", report.DocumentID, len(report.Fields)), nil)
}
