package command

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-cvbuilder/cv"
)

// BatchRequest names a stored document to render.
type BatchRequest struct {
	DocumentID string `json:"document_id"`
	TemplateID string `json:"template_id,omitempty"`
}

// BatchLoader loads batch requests from a source.
type BatchLoader func(ctx context.Context) ([]BatchRequest, error)

// BatchLimits bounds batch execution throughput.
type BatchLimits struct {
	MaxRequests int
	MinInterval time.Duration
}

// BatchOption customizes batch commands.
type BatchOption func(*BatchRender)

// WithBatchCLIConfig overrides CLI configuration.
func WithBatchCLIConfig(cfg gcmd.CLIConfig) BatchOption {
	return func(cmd *BatchRender) {
		cmd.cliConfig = cfg
	}
}

// WithBatchCronConfig overrides cron configuration.
func WithBatchCronConfig(cfg gcmd.HandlerConfig) BatchOption {
	return func(cmd *BatchRender) {
		cmd.cronConfig = cfg
	}
}

// WithBatchLimits overrides batch execution limits.
func WithBatchLimits(limits BatchLimits) BatchOption {
	return func(cmd *BatchRender) {
		cmd.limits = limits
	}
}

// BatchRender renders stored documents to PDF artifacts. The exporter
// should have an artifact store; output is otherwise discarded.
type BatchRender struct {
	persistence cv.Persistence
	exporter    *cv.Exporter
	loader      BatchLoader
	cliConfig   gcmd.CLIConfig
	cronConfig  gcmd.HandlerConfig
	limits      BatchLimits
	sleep       func(time.Duration)
	logger      cv.Logger
}

// NewBatchRender creates the batch render CLI/Cron command.
func NewBatchRender(persistence cv.Persistence, exporter *cv.Exporter, loader BatchLoader, opts ...BatchOption) *BatchRender {
	cmd := &BatchRender{
		persistence: persistence,
		exporter:    exporter,
		loader:      loader,
		cliConfig: gcmd.CLIConfig{
			Path:        []string{"render-batch"},
			Description: "Render stored documents to PDF",
			Group:       "cv",
		},
		cronConfig: gcmd.HandlerConfig{Expression: "0 3 * * *"},
		sleep:      time.Sleep,
		logger:     cv.NopLogger{},
	}
	if exporter != nil && exporter.Logger != nil {
		cmd.logger = exporter.Logger
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cmd)
		}
	}
	return cmd
}

// CronHandler renders the loader's documents.
func (c *BatchRender) CronHandler() func() error {
	return func() error {
		_, err := c.Run(context.Background(), "")
		return err
	}
}

// CronOptions returns cron configuration.
func (c *BatchRender) CronOptions() gcmd.HandlerConfig {
	if c == nil {
		return gcmd.HandlerConfig{}
	}
	return c.cronConfig
}

// CLIHandler exposes the CLI handler.
func (c *BatchRender) CLIHandler() any {
	return &batchCLI{cmd: c}
}

// CLIOptions returns CLI configuration.
func (c *BatchRender) CLIOptions() gcmd.CLIConfig {
	if c == nil {
		return gcmd.CLIConfig{}
	}
	return c.cliConfig
}

// Run renders each request and returns the finished exports. from, when
// set, is a JSON file of requests that replaces the loader.
func (c *BatchRender) Run(ctx context.Context, from string) ([]cv.ExportResult, error) {
	if c == nil {
		return nil, errors.New("batch command is nil", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	if c.persistence == nil || c.exporter == nil {
		return nil, errors.New("persistence and exporter are required", errors.CategoryValidation).
			WithTextCode("EXPORTER_REQUIRED")
	}

	requests, err := c.loadRequests(ctx, from)
	if err != nil {
		return nil, err
	}

	results := make([]cv.ExportResult, 0, len(requests))
	for _, item := range requests {
		if c.limits.MaxRequests > 0 && len(results) >= c.limits.MaxRequests {
			break
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
		doc, err := c.persistence.Load(ctx, item.DocumentID)
		if err != nil {
			return results, err
		}
		result, err := c.exporter.Export(ctx, doc.Normalize(), item.TemplateID, io.Discard, nil)
		if err != nil {
			return results, err
		}
		c.logger.Infof("cv: batch rendered %s as %s", doc.ID, result.ArtifactKey)
		results = append(results, result)
		if c.limits.MinInterval > 0 && c.sleep != nil {
			c.sleep(c.limits.MinInterval)
		}
	}
	return results, nil
}

func (c *BatchRender) loadRequests(ctx context.Context, from string) ([]BatchRequest, error) {
	if strings.TrimSpace(from) != "" {
		return loadBatchRequestsFromFile(from)
	}
	if c.loader == nil {
		return nil, errors.New("batch loader not configured", errors.CategoryValidation).
			WithTextCode("LOADER_REQUIRED")
	}
	return c.loader(ctx)
}

type batchCLI struct {
	cmd  *BatchRender
	From string `kong:"name='from',help='Path to JSON batch render requests'"`
}

func (c *batchCLI) Run() error {
	if c == nil || c.cmd == nil {
		return errors.New("batch command is required", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	_, err := c.cmd.Run(context.Background(), c.From)
	return err
}

func loadBatchRequestsFromFile(path string) ([]BatchRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "read batch file failed").
			WithTextCode("BATCH_FILE_READ")
	}

	var requests []BatchRequest
	if err := json.Unmarshal(content, &requests); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "batch file invalid JSON").
			WithTextCode("BATCH_FILE_INVALID")
	}
	return requests, nil
}

// DocumentIDs builds batch requests for ids with a shared template.
func DocumentIDs(templateID string, ids ...string) []BatchRequest {
	out := make([]BatchRequest, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, BatchRequest{DocumentID: id, TemplateID: templateID})
		}
	}
	return out
}
