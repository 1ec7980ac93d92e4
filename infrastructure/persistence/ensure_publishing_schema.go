package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EnsurePublishingSchema creates the publishing tables when missing and adds
// newer columns to existing installations. Safe to call at startup.
func EnsurePublishingSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{
		`CREATE TABLE IF NOT EXISTS platform_credentials (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			platform TEXT NOT NULL,
			account_name TEXT NOT NULL DEFAULT '',
			account_id TEXT NOT NULL DEFAULT '',
			access_token TEXT NOT NULL,
			refresh_token TEXT,
			expires_at TIMESTAMPTZ,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, platform, account_id)
		)`,
		`CREATE TABLE IF NOT EXISTS generated_media (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			image_url TEXT,
			video_url TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS scheduled_posts (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			image_id BIGINT,
			media_id BIGINT,
			video_url TEXT,
			caption TEXT NOT NULL DEFAULT '',
			platforms TEXT NOT NULL,
			scheduled_for TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL DEFAULT 'scheduled',
			retry_count INT NOT NULL DEFAULT 0,
			error_message TEXT,
			published_at TIMESTAMPTZ,
			facebook_post_id TEXT,
			instagram_post_id TEXT,
			tiktok_post_id TEXT,
			whatsapp_message_id TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scheduled_posts_due ON scheduled_posts (status, scheduled_for)`,
	}
	for _, ddl := range tables {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensuring publishing schema failed: %w", err)
		}
	}

	// Columns added after the first release.
	checks := []struct {
		table  string
		column string
		ddl    string
	}{
		{"scheduled_posts", "video_url", "ALTER TABLE scheduled_posts ADD COLUMN video_url TEXT"},
		{"scheduled_posts", "whatsapp_message_id", "ALTER TABLE scheduled_posts ADD COLUMN whatsapp_message_id TEXT"},
		{"platform_credentials", "account_name", "ALTER TABLE platform_credentials ADD COLUMN account_name TEXT NOT NULL DEFAULT ''"},
	}
	for _, c := range checks {
		exists, err := columnExists(ctx, db, c.table, c.column)
		if err != nil {
			return err
		}
		if !exists {
			if _, err := db.ExecContext(ctx, c.ddl); err != nil {
				return fmt.Errorf("adding column %s.%s failed: %w", c.table, c.column, err)
			}
		}
	}
	return nil
}

func columnExists(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	row := db.QueryRowContext(ctx, `SELECT 1 FROM information_schema.columns WHERE table_name=$1 AND column_name=$2`, table, column)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
