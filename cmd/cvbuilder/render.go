package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-cvbuilder/command"
	"github.com/goliatone/go-cvbuilder/cv"
)

type renderOptions struct {
	template string
	out      string
	batch    string
}

func newRenderCmd(state *cliState) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a stored document to PDF",
		Long: `Render a stored document to PDF.

With --batch, every request in the JSON file is rendered to the artifact
store instead:

  [{"document_id": "jane", "template_id": "cork"}]`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.batch != "" {
				return runBatchRender(cmd.Context(), state, opts.batch, cmd.OutOrStdout())
			}
			return runRender(cmd.Context(), state, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("document", "", "document id to render")
	cmd.Flags().String("engine", "", "pdf engine (chromium, wkhtmltopdf)")
	cmd.Flags().StringVar(&opts.template, "template", "", "template id (defaults to the document's template)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (defaults to the derived filename)")
	cmd.Flags().StringVar(&opts.batch, "batch", "", "JSON file of batch render requests")
	return cmd
}

func runRender(ctx context.Context, state *cliState, opts *renderOptions, stdout io.Writer) error {
	rt, err := openRuntime(ctx, state.cfg, state.logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	subs, err := command.RegisterHandlers(nil, command.Dependencies{
		Store:   rt.store,
		Layouts: rt.layouts,
		Preview: rt.pages,
		Tracker: rt.tracker,
	})
	if err != nil {
		return err
	}
	defer unsubscribe(subs)

	if err := dispatcher.Dispatch(ctx, command.LoadDocument{DocumentID: state.cfg.Storage.DocumentID}); err != nil {
		return err
	}

	path := opts.out
	if path == "" {
		path = cv.ExportFilename(rt.store.Snapshot())
	}
	file, err := os.Create(path)
	if err != nil {
		return cv.NewError(cv.KindPersistence, "create output file", err)
	}

	var result cv.ExportResult
	err = dispatcher.Dispatch(ctx, command.DownloadPDF{TemplateID: opts.template, Output: file, Result: &result})
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = cv.NewError(cv.KindPersistence, "close output file", closeErr)
	}
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	fmt.Fprintf(stdout, "%s (%s, %d bytes)\n", path, result.TemplateID, result.Bytes)
	return nil
}

func runBatchRender(ctx context.Context, state *cliState, from string, stdout io.Writer) error {
	rt, err := openRuntime(ctx, state.cfg, state.logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	batch := command.NewBatchRender(rt.persistence, rt.exporter, nil)
	results, err := batch.Run(ctx, from)
	for _, result := range results {
		fmt.Fprintf(stdout, "%s\t%s\t%s\n", result.DocumentID, result.TemplateID, result.ArtifactKey)
	}
	return err
}

func unsubscribe(subs []dispatcher.Subscription) {
	for _, sub := range subs {
		sub.Unsubscribe()
	}
}
