package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EnsurePublishingSchemaMSSQL creates the publishing tables for SQL Server
// deployments when missing and adds newer columns.
func EnsurePublishingSchemaMSSQL(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []struct {
		name string
		ddl  string
	}{
		{"platform_credentials", `CREATE TABLE dbo.[platform_credentials] (
			id BIGINT IDENTITY(1,1) PRIMARY KEY,
			user_id BIGINT NOT NULL,
			platform NVARCHAR(32) NOT NULL,
			account_name NVARCHAR(255) NOT NULL DEFAULT '',
			account_id NVARCHAR(255) NOT NULL DEFAULT '',
			access_token NVARCHAR(MAX) NOT NULL,
			refresh_token NVARCHAR(MAX) NULL,
			expires_at DATETIME2 NULL,
			is_active BIT NOT NULL DEFAULT 1,
			created_at DATETIME2 NOT NULL DEFAULT SYSUTCDATETIME(),
			updated_at DATETIME2 NOT NULL DEFAULT SYSUTCDATETIME()
		)`},
		{"scheduled_posts", `CREATE TABLE dbo.[scheduled_posts] (
			id BIGINT IDENTITY(1,1) PRIMARY KEY,
			user_id BIGINT NOT NULL,
			image_id BIGINT NULL,
			media_id BIGINT NULL,
			video_url NVARCHAR(2048) NULL,
			caption NVARCHAR(MAX) NOT NULL DEFAULT '',
			platforms NVARCHAR(255) NOT NULL,
			scheduled_for DATETIME2 NOT NULL,
			status NVARCHAR(32) NOT NULL DEFAULT 'scheduled',
			retry_count INT NOT NULL DEFAULT 0,
			error_message NVARCHAR(MAX) NULL,
			published_at DATETIME2 NULL,
			facebook_post_id NVARCHAR(255) NULL,
			instagram_post_id NVARCHAR(255) NULL,
			tiktok_post_id NVARCHAR(255) NULL,
			whatsapp_message_id NVARCHAR(255) NULL,
			created_at DATETIME2 NOT NULL DEFAULT SYSUTCDATETIME(),
			updated_at DATETIME2 NOT NULL DEFAULT SYSUTCDATETIME()
		)`},
	}
	for _, t := range tables {
		q := fmt.Sprintf(`IF OBJECT_ID('dbo.%s', 'U') IS NULL BEGIN %s END`, t.name, t.ddl)
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure table dbo.%s: %w", t.name, err)
		}
	}

	addIfMissing := func(table, column, ddl string) error {
		q := fmt.Sprintf(`IF COL_LENGTH('%s', '%s') IS NULL BEGIN %s END`, table, column, ddl)
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure column %s.%s: %w", table, column, err)
		}
		return nil
	}
	if err := addIfMissing("dbo.scheduled_posts", "video_url", "ALTER TABLE dbo.[scheduled_posts] ADD video_url NVARCHAR(2048) NULL"); err != nil {
		return err
	}
	if err := addIfMissing("dbo.scheduled_posts", "whatsapp_message_id", "ALTER TABLE dbo.[scheduled_posts] ADD whatsapp_message_id NVARCHAR(255) NULL"); err != nil {
		return err
	}
	return nil
}
