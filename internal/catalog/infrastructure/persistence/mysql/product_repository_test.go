package mysql

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wyfcoding/ecommerce/internal/catalog/domain"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestDecrementStockSuccess(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	// 条件更新必须把库存下限写进 WHERE，而不是读出来再比较
	mock.ExpectExec("UPDATE `products` SET").
		WithArgs(3, 1, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.DecrementStock(context.Background(), 1, 3)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStockInsufficient(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectExec("UPDATE `products` SET").
		WithArgs(5, 1, 5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	// 零行受影响后用存在性查询区分“库存不足”与“商品不存在”
	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := repo.DecrementStock(context.Background(), 1, 5)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStockProductNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectExec("UPDATE `products` SET").
		WithArgs(2, 42, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := repo.DecrementStock(context.Background(), 42, 2)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM `products`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectExec("UPDATE `products` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
