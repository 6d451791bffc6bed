package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"chayo-ai/backend/logger"
)

var schemaStmts = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS organizations (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        name TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE TABLE IF NOT EXISTS organization_members (
        organization_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
        user_id BIGINT NOT NULL,
        role TEXT NOT NULL DEFAULT 'member',
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        PRIMARY KEY (organization_id, user_id)
    )`,
	`CREATE TABLE IF NOT EXISTS business_info_fields (
        organization_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
        field_name TEXT NOT NULL,
        value TEXT NULL, -- NULL or blank means unanswered
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        PRIMARY KEY (organization_id, field_name)
    )`,
	`CREATE TABLE IF NOT EXISTS setup_completions (
        organization_id UUID PRIMARY KEY REFERENCES organizations(id) ON DELETE CASCADE,
        setup_status TEXT NOT NULL DEFAULT 'not_started'
            CHECK (setup_status IN ('not_started','in_progress','completed')),
        completion_data JSONB NULL,
        completed_at TIMESTAMPTZ NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
}

// EnsureSchema creates required extensions and tables if they do not exist.
// Every statement is attempted; failures are logged and joined.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) error {
	var errs []error
	for _, s := range schemaStmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			log.Error("schema ensure error", "error", err, "stmt", s)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
