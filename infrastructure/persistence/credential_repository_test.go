package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"postpilot/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func credentialRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "platform", "account_name", "account_id", "access_token",
		"refresh_token", "expires_at", "is_active", "created_at", "updated_at",
	})
}

func TestCredentialRepository_GetActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCredentialRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `+credentialColumns+` FROM platform_credentials WHERE user_id=$1 AND platform=$2 AND is_active=TRUE ORDER BY updated_at DESC LIMIT 1`)).
		WithArgs(int64(42), "tiktok").
		WillReturnRows(credentialRows().
			AddRow(3, 42, "tiktok", "@brand", "open-id-1", "enc:token", "enc:refresh", nil, true, now, now))

	cred, err := repo.GetActive(context.Background(), 42, model.PlatformTikTok)
	require.NoError(t, err)
	require.NotNil(t, cred)
	require.Equal(t, int64(3), cred.ID)
	require.Equal(t, model.PlatformTikTok, cred.Platform)
	require.NotNil(t, cred.RefreshToken)
	require.Equal(t, "enc:refresh", *cred.RefreshToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_GetActive_NotConnected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCredentialRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + credentialColumns + ` FROM platform_credentials WHERE user_id=$1 AND platform=$2 AND is_active=TRUE ORDER BY updated_at DESC LIMIT 1`)).
		WithArgs(int64(42), "whatsapp").
		WillReturnRows(credentialRows())

	cred, err := repo.GetActive(context.Background(), 42, model.PlatformWhatsApp)
	require.NoError(t, err)
	require.Nil(t, cred)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_UpdateTokens_KeepsRefreshWhenNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCredentialRepository(db)

	expiresAt := time.Now().Add(60 * 24 * time.Hour).UTC()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE platform_credentials SET access_token=$1, refresh_token=COALESCE($2, refresh_token), expires_at=$3, updated_at=$4 WHERE id=$5`)).
		WithArgs("enc:new-token", nil, &expiresAt, sqlmock.AnyArg(), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateTokens(context.Background(), 3, "enc:new-token", nil, &expiresAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_Deactivate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCredentialRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE platform_credentials SET is_active=FALSE, updated_at=$1 WHERE id=$2`)).
		WithArgs(sqlmock.AnyArg(), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), 3))
	require.NoError(t, mock.ExpectationsWereMet())
}
