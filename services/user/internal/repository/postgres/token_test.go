package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/pagination"
	"github.com/Azizo-B/microservices/services/user/internal/domain"
)

func newTokenTestFixture(t *testing.T) (*TokenRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewTokenRepository(mock)
	return repo, mock
}

func sampleToken() *domain.Token {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Token{
		ID:        "t-1234",
		UserID:    "u-1234",
		AppID:     "a-1234",
		DeviceID:  nil,
		Type:      domain.TokenTypeSession,
		Token:     "signed-credential",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
}

func tokenColumnNames() []string {
	return []string{
		"id", "user_id", "app_id", "device_id", "type",
		"token", "expires_at", "created_at", "revoked_at",
	}
}

func tokenRow(tk *domain.Token) *pgxmock.Rows {
	return pgxmock.NewRows(tokenColumnNames()).AddRow(
		tk.ID, tk.UserID, tk.AppID, tk.DeviceID, tk.Type,
		tk.Token, tk.ExpiresAt, tk.CreatedAt, tk.RevokedAt,
	)
}

func TestTokenRepository_Create_Success(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	tk := sampleToken()

	mock.ExpectExec("INSERT INTO tokens").
		WithArgs(tk.ID, tk.UserID, tk.AppID, tk.DeviceID, tk.Type, tk.Token, tk.ExpiresAt, tk.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), tk)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_Create_UnknownUser(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	tk := sampleToken()

	mock.ExpectExec("INSERT INTO tokens").
		WithArgs(tk.ID, tk.UserID, tk.AppID, tk.DeviceID, tk.Type, tk.Token, tk.ExpiresAt, tk.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := repo.Create(context.Background(), tk)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_GetByID_Success(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	tk := sampleToken()

	mock.ExpectQuery("SELECT .+ FROM tokens WHERE id =").
		WithArgs(tk.ID).
		WillReturnRows(tokenRow(tk))

	got, err := repo.GetByID(context.Background(), tk.ID)
	require.NoError(t, err)
	assert.Equal(t, tk, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM tokens WHERE id =").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(tokenColumnNames()))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_List_FiltersByUserAndType(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	tk := sampleToken()

	mock.ExpectQuery("SELECT .+ FROM tokens WHERE user_id = .+ AND type = .+ ORDER BY created_at DESC").
		WithArgs("u-1234", domain.TokenTypeSession, 20, 0).
		WillReturnRows(tokenRow(tk))

	got, err := repo.List(context.Background(),
		domain.TokenFilter{UserID: "u-1234", Type: domain.TokenTypeSession},
		pagination.Params{Page: 1, Limit: 20},
	)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, tk.ID, got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_Revoke_OnlyLiveRows(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	at := time.Now().UTC()

	// The guard clause means revoking an already revoked token touches no
	// rows, which is still a success.
	mock.ExpectExec("UPDATE tokens SET revoked_at = .+ WHERE id = .+ AND revoked_at IS NULL").
		WithArgs(at, "t-1234").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Revoke(context.Background(), "t-1234", at)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_RevokeAllOfType(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	at := time.Now().UTC()

	mock.ExpectExec("UPDATE tokens SET revoked_at = .+ WHERE user_id = .+ AND type = .+ AND revoked_at IS NULL").
		WithArgs(at, "u-1234", domain.TokenTypePasswordReset).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	err := repo.RevokeAllOfType(context.Background(), "u-1234", domain.TokenTypePasswordReset, at)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_LinkDevice_NotFound(t *testing.T) {
	repo, mock := newTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE tokens SET device_id =").
		WithArgs("d-1234", "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.LinkDevice(context.Background(), "missing", "d-1234")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
