package persistence

import (
	"context"
	"database/sql"
	"time"

	"postpilot/domain/model"
	"postpilot/domain/repository"
)

const credentialColumns = `id, user_id, platform, account_name, account_id, access_token, refresh_token, expires_at, is_active, created_at, updated_at`

// CredentialRepository stores platform credentials on PostgreSQL. Token
// columns hold the encrypted form; this layer never decrypts.
type CredentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) repository.IPlatformCredential {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) GetByID(ctx context.Context, id int64) (*model.PlatformCredential, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+credentialColumns+` FROM platform_credentials WHERE id=$1`, id)
	return scanCredential(row)
}

// GetActive returns nil, nil when the account is not connected.
func (r *CredentialRepository) GetActive(ctx context.Context, userID int64, platform model.Platform) (*model.PlatformCredential, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+credentialColumns+` FROM platform_credentials WHERE user_id=$1 AND platform=$2 AND is_active=TRUE ORDER BY updated_at DESC LIMIT 1`, userID, string(platform))
	cred, err := scanCredential(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return cred, err
}

func (r *CredentialRepository) ListByUser(ctx context.Context, userID int64) ([]*model.PlatformCredential, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+credentialColumns+` FROM platform_credentials WHERE user_id=$1 ORDER BY platform ASC`, userID)
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

func (r *CredentialRepository) Upsert(ctx context.Context, cred *model.PlatformCredential) error {
	now := time.Now().UTC()
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = now
	}
	cred.UpdatedAt = now
	q := `INSERT INTO platform_credentials (user_id, platform, account_name, account_id, access_token, refresh_token, expires_at, is_active, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		  ON CONFLICT (user_id, platform, account_id) DO UPDATE SET
			account_name=EXCLUDED.account_name,
			access_token=EXCLUDED.access_token,
			refresh_token=EXCLUDED.refresh_token,
			expires_at=EXCLUDED.expires_at,
			is_active=EXCLUDED.is_active,
			updated_at=EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, cred.UserID, string(cred.Platform), cred.AccountName, cred.AccountID, cred.AccessToken, cred.RefreshToken, cred.ExpiresAt, cred.IsActive, cred.CreatedAt, cred.UpdatedAt)
	return err
}

func (r *CredentialRepository) UpdateTokens(ctx context.Context, id int64, accessToken string, refreshToken *string, expiresAt *time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE platform_credentials SET access_token=$1, refresh_token=COALESCE($2, refresh_token), expires_at=$3, updated_at=$4 WHERE id=$5`,
		accessToken, refreshToken, expiresAt, time.Now().UTC(), id)
	return err
}

func (r *CredentialRepository) Deactivate(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE platform_credentials SET is_active=FALSE, updated_at=$1 WHERE id=$2`, time.Now().UTC(), id)
	return err
}

func scanCredential(row rowScanner) (*model.PlatformCredential, error) {
	cred := &model.PlatformCredential{}
	var (
		platform     string
		refreshToken sql.NullString
		expiresAt    sql.NullTime
	)
	if err := row.Scan(&cred.ID, &cred.UserID, &platform, &cred.AccountName, &cred.AccountID, &cred.AccessToken, &refreshToken, &expiresAt, &cred.IsActive, &cred.CreatedAt, &cred.UpdatedAt); err != nil {
		return nil, err
	}
	cred.Platform = model.Platform(platform)
	if refreshToken.Valid {
		cred.RefreshToken = &refreshToken.String
	}
	if expiresAt.Valid {
		cred.ExpiresAt = &expiresAt.Time
	}
	return cred, nil
}
