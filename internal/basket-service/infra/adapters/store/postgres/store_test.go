package postgres

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/domain"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return New(db), mock
}

func TestLoadFound(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM basket_documents WHERE user_name = $1`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).
			AddRow([]byte(`{"userName":"alice","items":[{"productId":"p1","productName":"X","price":"8","quantity":2}]}`)))

	cart, found, err := s.Load(context.Background(), "alice")

	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "alice", cart.UserName)
	assert.Equal(t, 1, len(cart.Items))
	assert.True(t, cart.Items[0].Price.Equal(decimal.NewFromInt(8)))
}

func TestLoadMissing(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM basket_documents`)).
		WithArgs("bob").
		WillReturnError(sql.ErrNoRows)

	cart, found, err := s.Load(context.Background(), "bob")

	assert.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, cart)
}

func TestLoadFailureIsStoreFailure(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM basket_documents`)).
		WithArgs("alice").
		WillReturnError(errors.New("connection reset"))

	_, _, err := s.Load(context.Background(), "alice")

	assert.IsError(t, err, domain.ErrStoreFailure)
}

func TestSaveUpserts(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO basket_documents`)).
		WithArgs("alice", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	cart := &domain.ShoppingCart{UserName: "alice", Items: []domain.CartItem{
		{ProductID: "p1", ProductName: "X", Price: decimal.NewFromInt(8), Quantity: 1},
	}}

	assert.NoError(t, s.Save(context.Background(), cart))
}

func TestSaveFailureIsStoreFailure(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO basket_documents`)).
		WillReturnError(errors.New("disk full"))

	err := s.Save(context.Background(), domain.NewShoppingCart("alice"))

	assert.IsError(t, err, domain.ErrStoreFailure)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM basket_documents WHERE user_name = $1`)).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, s.Delete(context.Background(), "ghost"))
}

func TestEnsureSchema(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS basket_documents`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, s.EnsureSchema(context.Background()))
}

func TestOpenGivesUpWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := Open(ctx, "postgres://u:p@127.0.0.1:1/db?sslmode=disable&connect_timeout=1", slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Error(t, err)
	assert.IsError(t, err, context.DeadlineExceeded)
}
