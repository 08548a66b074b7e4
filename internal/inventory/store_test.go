package inventory

import (
	"encoding/json"
	"fmt"
	"regexp"
	"testing"

	"gastro-backend/internal/audit"
	"gastro-backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

// captureCreates collects every value of type T passed to db.Create.
func captureCreates[T any](t *testing.T, db *gorm.DB) *[]T {
	var got []T
	name := fmt.Sprintf("test:capture_%T", got)
	err := db.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if v, ok := tx.Statement.Dest.(*T); ok {
			got = append(got, *v)
		}
	})
	require.NoError(t, err)
	return &got
}

var itemCols = []string{"id", "name", "category", "quantity", "unit", "cost_per_unit", "location_id"}

func TestApplyMovement(t *testing.T) {
	db, mock := newMockDB(t)
	moved := captureCreates[models.InventoryMovement](t, db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "inventory_items"`)).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(5, "Carne", "Carnes", 4.0, "kg", 42.5, 2))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "inventory_items"`)).
		WithArgs(3.25, sqlmock.AnyArg(), 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "inventory_movements"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	item, err := ApplyMovement(db, &models.InventoryMovement{
		InventoryItemID: 5,
		MovementType:    models.MovementSale,
		Quantity:        0.75,
	})
	require.NoError(t, err)
	assert.Equal(t, 3.25, item.Quantity)

	require.Len(t, *moved, 1)
	mv := (*moved)[0]
	assert.Equal(t, "kg", mv.Unit)
	assert.Equal(t, 42.5, mv.CostPerUnit)
	require.NotNil(t, mv.LocationID)
	assert.Equal(t, uint(2), *mv.LocationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyMovement_InsufficientStock(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "inventory_items"`)).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(5, "Carne", "Carnes", 1.0, "kg", 42.5, nil))

	_, err := ApplyMovement(db, &models.InventoryMovement{
		InventoryItemID: 5,
		MovementType:    models.MovementOut,
		Quantity:        2,
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyMovement_UnknownItem(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "inventory_items"`)).
		WillReturnRows(sqlmock.NewRows(itemCols))

	_, err := ApplyMovement(db, &models.InventoryMovement{InventoryItemID: 9, MovementType: models.MovementIn, Quantity: 1})
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ImportRowsRestocksExistingItem(t *testing.T) {
	db, mock := newMockDB(t)
	logs := captureCreates[models.AuditLog](t, db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "inventory_items"`)).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(5, "Carne", "Carnes", 4.0, "kg", 40.0, nil))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "inventory_items"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "inventory_items"`)).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(5, "Carne", "Carnes", 4.0, "kg", 45.0, nil))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "inventory_items"`)).
		WithArgs(10.0, sqlmock.AnyArg(), 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "inventory_movements"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "audit_logs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	res, err := NewStore(db).ImportRows([]ImportRow{
		{Line: 2, Name: "carne", Category: "Carnes", Unit: "kg", Quantity: 6, MinStock: 2, CostPerUnit: 45},
	}, nil, audit.Actor{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)

	require.Len(t, *logs, 1)
	var before, after models.InventoryItem
	require.NoError(t, json.Unmarshal([]byte((*logs)[0].BeforeData), &before))
	require.NoError(t, json.Unmarshal([]byte((*logs)[0].AfterData), &after))
	assert.Equal(t, 4.0, before.Quantity)
	assert.Equal(t, 10.0, after.Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}
