package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"pcd-jobs-backend/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.Log.Info("Database schema applied")
	return nil
}
