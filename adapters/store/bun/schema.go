// Package storebun persists CV documents and export history with bun.
// The sqlite dialect is wired by Open; any bun.DB with a dialect that
// supports ON CONFLICT works.
package storebun

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Open connects to a sqlite database and creates the schema.
func Open(ctx context.Context, dsn string) (*bun.DB, error) {
	if dsn == "" {
		dsn = "file:cvbuilder.db?cache=shared"
	}
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	if err := CreateSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// CreateSchema creates the documents and exports tables if missing.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	for _, model := range []any{(*documentModel)(nil), (*exportModel)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	_, err := db.NewCreateIndex().
		Model((*exportModel)(nil)).
		Index("cv_exports_document_idx").
		IfNotExists().
		Column("document_id", "started_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}
