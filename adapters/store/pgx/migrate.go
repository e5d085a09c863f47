package storepgx

import (
	"context"
	"fmt"

	"github.com/goliatone/go-cvbuilder/cv"
)

// Migration is one idempotent schema step.
type Migration struct {
	Name string
	SQL  string
}

// Migrations creates and evolves the document schema. Every statement is
// safe to re-run.
var Migrations = []Migration{
	{
		Name: "create_cv_documents",
		SQL: `CREATE TABLE IF NOT EXISTS cv_documents (
			id TEXT PRIMARY KEY,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	},
	{
		Name: "add_listing_columns",
		SQL: `ALTER TABLE cv_documents
			ADD COLUMN IF NOT EXISTS full_name TEXT NOT NULL DEFAULT '',
			ADD COLUMN IF NOT EXISTS template_id TEXT NOT NULL DEFAULT ''`,
	},
	{
		Name: "index_updated_at",
		SQL:  `CREATE INDEX IF NOT EXISTS cv_documents_updated_at_idx ON cv_documents (updated_at DESC)`,
	},
}

// Migrate runs Migrations in order.
func Migrate(ctx context.Context, db DB, logger cv.Logger) error {
	if logger == nil {
		logger = cv.NopLogger{}
	}
	for _, m := range Migrations {
		if _, err := db.Exec(ctx, m.SQL); err != nil {
			logger.Errorf("migration failed name=%s err=%v", m.Name, err)
			return cv.NewError(cv.KindPersistence, fmt.Sprintf("migration %s", m.Name), err)
		}
		logger.Infof("migration applied name=%s", m.Name)
	}
	return nil
}
