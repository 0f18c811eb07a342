package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joyworks/workshop-api/internal/models"
	appErrors "github.com/joyworks/workshop-api/pkg/errors"
)

func newJoyCoinMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestJoyCoinRepositoryAppend(t *testing.T) {
	db, mock, cleanup := newJoyCoinMock(t)
	defer cleanup()
	repo := NewJoyCoinRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT balance FROM joycoin_balances WHERE participant_id = \$1 FOR UPDATE`).
		WithArgs("p-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(40))
	mock.ExpectExec("INSERT INTO joycoin_transactions").
		WithArgs(sqlmock.AnyArg(), "p-1", models.JoyCoinTypeWorkshopAttendance, 50, 90,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE joycoin_balances SET balance = \$2, updated_at = \$3 WHERE participant_id = \$1`).
		WithArgs("p-1", 90, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	txn := &models.JoyCoinTransaction{
		ParticipantID: "p-1",
		Type:          models.JoyCoinTypeWorkshopAttendance,
		Amount:        50,
	}
	err := repo.Append(context.Background(), txn)
	require.NoError(t, err)
	assert.Equal(t, 90, txn.Balance, "the running balance folds the prior balance in")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoyCoinRepositoryAppendInitialisesBalanceRow(t *testing.T) {
	db, mock, cleanup := newJoyCoinMock(t)
	defer cleanup()
	repo := NewJoyCoinRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT balance FROM joycoin_balances WHERE participant_id = \$1 FOR UPDATE`).
		WithArgs("p-new").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO joycoin_balances").
		WithArgs("p-new", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO joycoin_transactions").
		WithArgs(sqlmock.AnyArg(), "p-new", models.JoyCoinTypeReward, 25, 25,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE joycoin_balances").
		WithArgs("p-new", 25, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	txn := &models.JoyCoinTransaction{
		ParticipantID: "p-new",
		Type:          models.JoyCoinTypeReward,
		Amount:        25,
	}
	err := repo.Append(context.Background(), txn)
	require.NoError(t, err)
	assert.Equal(t, 25, txn.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoyCoinRepositoryAppendRejectsNegativeBalance(t *testing.T) {
	db, mock, cleanup := newJoyCoinMock(t)
	defer cleanup()
	repo := NewJoyCoinRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT balance FROM joycoin_balances WHERE participant_id = \$1 FOR UPDATE`).
		WithArgs("p-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(10))
	mock.ExpectRollback()

	txn := &models.JoyCoinTransaction{
		ParticipantID: "p-1",
		Type:          models.JoyCoinTypeDeduction,
		Amount:        -20,
	}
	err := repo.Append(context.Background(), txn)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInsufficientCoins))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoyCoinRepositoryExistsForWorkshop(t *testing.T) {
	db, mock, cleanup := newJoyCoinMock(t)
	defer cleanup()
	repo := NewJoyCoinRepository(db)

	mock.ExpectQuery(`SELECT 1 FROM joycoin_transactions\s+WHERE participant_id = \$1 AND workshop_id = \$2 AND type = \$3 LIMIT 1`).
		WithArgs("p-1", "ws-1", models.JoyCoinTypeWorkshopAttendance).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	exists, err := repo.ExistsForWorkshop(context.Background(), "p-1", "ws-1", models.JoyCoinTypeWorkshopAttendance)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestJoyCoinRepositoryExistsForWorkshopMiss(t *testing.T) {
	db, mock, cleanup := newJoyCoinMock(t)
	defer cleanup()
	repo := NewJoyCoinRepository(db)

	mock.ExpectQuery("SELECT 1 FROM joycoin_transactions").
		WithArgs("p-1", "ws-1", models.JoyCoinTypeCertificateEarned).
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsForWorkshop(context.Background(), "p-1", "ws-1", models.JoyCoinTypeCertificateEarned)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestJoyCoinRepositoryBalanceDefaultsToZero(t *testing.T) {
	db, mock, cleanup := newJoyCoinMock(t)
	defer cleanup()
	repo := NewJoyCoinRepository(db)

	mock.ExpectQuery(`SELECT balance FROM joycoin_balances WHERE participant_id = \$1`).
		WithArgs("p-unknown").
		WillReturnError(sql.ErrNoRows)

	balance, err := repo.Balance(context.Background(), "p-unknown")
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}
