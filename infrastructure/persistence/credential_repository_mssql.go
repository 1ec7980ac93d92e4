package persistence

import (
	"context"
	"database/sql"
	"time"

	"postpilot/domain/model"
	"postpilot/domain/repository"
)

// CredentialRepositoryMSSQL is the SQL Server variant of the credential
// store. Upsert is a MERGE since MSSQL lacks ON CONFLICT.
type CredentialRepositoryMSSQL struct {
	db *sql.DB
}

func NewCredentialRepositoryMSSQL(db *sql.DB) repository.IPlatformCredential {
	return &CredentialRepositoryMSSQL{db: db}
}

func (r *CredentialRepositoryMSSQL) GetByID(ctx context.Context, id int64) (*model.PlatformCredential, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+credentialColumns+` FROM dbo.[platform_credentials] WHERE id=@p1`, id)
	return scanCredential(row)
}

func (r *CredentialRepositoryMSSQL) GetActive(ctx context.Context, userID int64, platform model.Platform) (*model.PlatformCredential, error) {
	row := r.db.QueryRowContext(ctx, `SELECT TOP 1 `+credentialColumns+` FROM dbo.[platform_credentials] WHERE user_id=@p1 AND platform=@p2 AND is_active=1 ORDER BY updated_at DESC`, userID, string(platform))
	cred, err := scanCredential(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return cred, err
}

func (r *CredentialRepositoryMSSQL) ListByUser(ctx context.Context, userID int64) ([]*model.PlatformCredential, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+credentialColumns+` FROM dbo.[platform_credentials] WHERE user_id=@p1 ORDER BY platform ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*model.PlatformCredential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, cred)
	}
	return list, rows.Err()
}

func (r *CredentialRepositoryMSSQL) Upsert(ctx context.Context, cred *model.PlatformCredential) error {
	now := time.Now().UTC()
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = now
	}
	cred.UpdatedAt = now
	q := `MERGE dbo.[platform_credentials] AS target
		USING (SELECT @p1 AS user_id, @p2 AS platform, @p4 AS account_id) AS src
		ON target.user_id = src.user_id AND target.platform = src.platform AND target.account_id = src.account_id
		WHEN MATCHED THEN UPDATE SET
			account_name=@p3, access_token=@p5, refresh_token=@p6, expires_at=@p7, is_active=@p8, updated_at=@p10
		WHEN NOT MATCHED THEN INSERT (user_id, platform, account_name, account_id, access_token, refresh_token, expires_at, is_active, created_at, updated_at)
			VALUES (@p1,@p2,@p3,@p4,@p5,@p6,@p7,@p8,@p9,@p10);`
	_, err := r.db.ExecContext(ctx, q, cred.UserID, string(cred.Platform), cred.AccountName, cred.AccountID, cred.AccessToken, cred.RefreshToken, cred.ExpiresAt, cred.IsActive, cred.CreatedAt, cred.UpdatedAt)
	return err
}

func (r *CredentialRepositoryMSSQL) UpdateTokens(ctx context.Context, id int64, accessToken string, refreshToken *string, expiresAt *time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE dbo.[platform_credentials] SET access_token=@p1, refresh_token=COALESCE(@p2, refresh_token), expires_at=@p3, updated_at=@p4 WHERE id=@p5`,
		accessToken, refreshToken, expiresAt, time.Now().UTC(), id)
	return err
}

func (r *CredentialRepositoryMSSQL) Deactivate(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE dbo.[platform_credentials] SET is_active=0, updated_at=@p1 WHERE id=@p2`, time.Now().UTC(), id)
	return err
}
