package suppliers

import (
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

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

func TestSupplierRequest_Apply(t *testing.T) {
	str := func(s string) *string { return &s }
	rating := func(r float64) *float64 { return &r }

	tests := []struct {
		name    string
		body    SupplierRequest
		wantErr bool
	}{
		{name: "valid", body: SupplierRequest{Name: str(" Frigorifico Sur "), Email: str("Ventas@Sur.bo"), Rating: rating(4)}},
		{name: "missing name", body: SupplierRequest{Name: str("  ")}, wantErr: true},
		{name: "rating too high", body: SupplierRequest{Name: str("A"), Rating: rating(6)}, wantErr: true},
		{name: "rating too low", body: SupplierRequest{Name: str("A"), Rating: rating(0)}, wantErr: true},
		{name: "bad email", body: SupplierRequest{Name: str("A"), Email: str("nope")}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.Supplier{IsActive: true}
			err := tt.body.apply(&s)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Frigorifico Sur", s.Name)
			assert.Equal(t, "ventas@sur.bo", s.Email)
		})
	}
}

func TestGetSupplierHandler_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "suppliers"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	app := fiber.New()
	app.Get("/suppliers/:id", GetSupplierHandler(db))

	resp, err := app.Test(httptest.NewRequest("GET", "/suppliers/3", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSupplierHandler(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "suppliers"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	app := fiber.New()
	app.Post("/suppliers", CreateSupplierHandler(db))

	req := httptest.NewRequest("POST", "/suppliers", strings.NewReader(`{"name":"Granja Ana","rating":5}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())

	req = httptest.NewRequest("POST", "/suppliers", strings.NewReader(`{"name":"Granja Ana","rating":9}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
