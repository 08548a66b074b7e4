package cashregister

import (
	"encoding/json"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"gastro-backend/internal/auth"
	"gastro-backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
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

func newApp(store *Store) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		loc := uint(2)
		c.Locals(auth.CtxUserIDKey, uint(7))
		c.Locals(auth.CtxLocationIDKey, &loc)
		return c.Next()
	})
	app.Get("/cash-register/status", StatusHandler(store))
	app.Post("/cash-register/open", OpenHandler(store))
	app.Post("/cash-register/:id/close", CloseHandler(store))
	return app
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name                    string
		opening, sales, counted float64
		system, difference      float64
	}{
		{"exact", 100, 250.5, 350.5, 350.5, 0},
		{"short", 100, 250.5, 340, 350.5, -10.5},
		{"over", 50, 0, 55.25, 50, 5.25},
		{"float noise", 0.1, 0.2, 0.3, 0.3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			system, diff := Reconcile(tt.opening, tt.sales, tt.counted)
			assert.Equal(t, tt.system, system)
			assert.Equal(t, tt.difference, diff)
		})
	}
}

func TestOpenHandler_RejectsSecondSession(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "cash_sessions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	req := httptest.NewRequest("POST", "/cash-register/open", strings.NewReader(`{"opening_amount":100}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := newApp(NewStore(db)).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_OpenLocksUserBeforeCounting(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users" .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "cash_sessions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "cash_sessions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectCommit()

	session, err := NewStore(db).Open(7, 2, 100.456, "turno tarde")
	require.NoError(t, err)
	assert.Equal(t, uint(4), session.ID)
	assert.Equal(t, 100.46, session.OpeningAmount)
	assert.Equal(t, models.CashSessionOpen, session.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenHandler_NegativeAmount(t *testing.T) {
	db, _ := newMockDB(t)
	req := httptest.NewRequest("POST", "/cash-register/open", strings.NewReader(`{"opening_amount":-1}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := newApp(NewStore(db)).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestStatusHandler_NoOpenSession(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cash_sessions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	resp, err := newApp(NewStore(db)).Test(httptest.NewRequest("GET", "/cash-register/status", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		IsOpen bool `json:"is_open"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.IsOpen)
}

func TestCloseHandler(t *testing.T) {
	opened := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	cols := []string{"id", "location_id", "user_id", "opening_amount", "status", "opened_at"}

	t.Run("reconciles against sales", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cash_sessions"`)).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(4, 2, 7, 100.0, models.CashSessionOpen, opened))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(total), 0) FROM "sales"`)).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(250.5))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "cash_sessions"`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		store := NewStore(db)
		store.now = func() time.Time { return opened.Add(9 * time.Hour) }

		req := httptest.NewRequest("POST", "/cash-register/4/close", strings.NewReader(`{"counted_amount":340}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := newApp(store).Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var session models.CashSession
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
		assert.Equal(t, models.CashSessionClosed, session.Status)
		require.NotNil(t, session.SystemAmount)
		assert.Equal(t, 350.5, *session.SystemAmount)
		assert.Equal(t, -10.5, *session.Difference)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already closed", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cash_sessions"`)).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(4, 2, 7, 100.0, models.CashSessionClosed, opened))
		mock.ExpectRollback()

		req := httptest.NewRequest("POST", "/cash-register/4/close", strings.NewReader(`{"counted_amount":10}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := newApp(NewStore(db)).Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})
}
