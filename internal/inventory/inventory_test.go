package inventory

import (
	"bytes"
	"testing"

	"gastro-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNextQuantity(t *testing.T) {
	tests := []struct {
		name        string
		current     float64
		movement    models.MovementType
		qty         float64
		expected    float64
		expectedErr error
	}{
		{"in adds", 5, models.MovementIn, 3, 8, nil},
		{"return adds", 5, models.MovementReturn, 2, 7, nil},
		{"out removes", 5, models.MovementOut, 3, 2, nil},
		{"negative qty is treated as magnitude", 5, models.MovementSale, -2, 3, nil},
		{"waste to zero", 2, models.MovementWaste, 2, 0, nil},
		{"adjustment is signed", 5, models.MovementAdjustment, -1.5, 3.5, nil},
		{"below zero", 1, models.MovementOut, 2, 1, ErrInsufficientStock},
		{"adjustment below zero", 1, models.MovementAdjustment, -2, 1, ErrInsufficientStock},
		{"zero quantity", 1, models.MovementIn, 0, 1, ErrInvalidQuantity},
		{"unknown type", 1, models.MovementType("LOST"), 1, 1, ErrInvalidMovementType},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			got, err := NextQuantity(testCase.current, testCase.movement, testCase.qty)
			if testCase.expectedErr != nil {
				assert.ErrorIs(t, err, testCase.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.InDelta(t, testCase.expected, got, 1e-9)
		})
	}
}

func TestStockAlerts(t *testing.T) {
	items := []models.InventoryItem{
		{ID: 1, Name: "Papa", Quantity: 2, MinStock: 5, Unit: "kg"},
		{ID: 2, Name: "Tomate", Quantity: 4, MinStock: 5, Unit: "kg"},
		{ID: 3, Name: "Cebolla", Quantity: 5.5, MinStock: 5, Unit: "kg"},
		{ID: 4, Name: "Arroz", Quantity: 50, MinStock: 5, Unit: "kg"},
	}

	critical := CriticalStockAlerts(items)
	require.Equal(t, 2, critical.Count)
	assert.Equal(t, "Papa", critical.Alerts[0].Name)
	assert.Equal(t, SeverityCritical, critical.Alerts[0].Severity)
	assert.Equal(t, 40.0, critical.Alerts[0].Percentage)
	assert.Equal(t, 3.0, critical.Alerts[0].Shortage)
	assert.Equal(t, SeverityWarning, critical.Alerts[1].Severity)

	low := LowStockAlerts(items, 1.2)
	assert.Equal(t, 3, low.Count)

	low = LowStockAlerts(items, 0)
	assert.Equal(t, 3, low.Count, "threshold falls back to the default")

	empty := CriticalStockAlerts(nil)
	assert.Equal(t, 0, empty.Count)
	assert.NotNil(t, empty.Alerts)
}

func TestLowMarginAlerts(t *testing.T) {
	recipes := []models.Recipe{
		{ID: 1, Name: "Sajta", Price: 25, Cost: 5.52, Margin: 77.92},
		{ID: 2, Name: "Sopa", Price: 10, Cost: 8, Margin: 20},
		{ID: 3, Name: "Loss", Price: 10, Cost: 12, Margin: -20},
	}

	alerts := LowMarginAlerts(recipes, 30)
	require.Equal(t, 2, alerts.Count)
	assert.Equal(t, SeverityWarning, alerts.Alerts[0].Severity)
	assert.Equal(t, 10.4, alerts.Alerts[0].RecommendedPrice)
	assert.Equal(t, SeverityCritical, alerts.Alerts[1].Severity)
	assert.Equal(t, -20.0, alerts.Alerts[1].Margin)
}

func TestBuildAllAlerts(t *testing.T) {
	all := BuildAllAlerts(
		[]models.InventoryItem{{ID: 1, Quantity: 1, MinStock: 5}},
		[]models.Recipe{{ID: 1, Margin: 5}},
	)
	assert.Equal(t, 3, all.TotalAlerts)
}

func TestParseImportRows(t *testing.T) {
	t.Run("with header in custom order", func(t *testing.T) {
		rows := [][]string{
			{"Cost", "Name", "Quantity", "Unit", "Category", "Min Stock"},
			{"1,5", "Papa", "10", "kg", "Verduras", "5"},
			{"", "", "", "", "", ""},
			{"abc", "Tomate", "1", "kg", "Verduras", "1"},
		}
		parsed, problems := ParseImportRows(rows)
		require.Len(t, parsed, 1)
		assert.Equal(t, ImportRow{Line: 2, Name: "Papa", Category: "Verduras", Unit: "kg", Quantity: 10, MinStock: 5, CostPerUnit: 1.5}, parsed[0])
		assert.Equal(t, []string{"line 4: invalid cost_per_unit"}, problems)
	})

	t.Run("positional without header", func(t *testing.T) {
		rows := [][]string{
			{"Arroz", "Granos", "kg", "20", "4", "0.8"},
			{"Sal"},
		}
		parsed, problems := ParseImportRows(rows)
		require.Len(t, parsed, 2)
		assert.Empty(t, problems)
		assert.Equal(t, 20.0, parsed[0].Quantity)
		assert.Equal(t, "General", parsed[1].Category)
		assert.Equal(t, "kg", parsed[1].Unit)
	})

	t.Run("negative quantity", func(t *testing.T) {
		parsed, problems := ParseImportRows([][]string{{"Papa", "Verduras", "kg", "-1"}})
		assert.Empty(t, parsed)
		assert.Len(t, problems, 1)
	})
}

func TestReadImportFile(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"name", "category", "unit", "quantity", "min_stock", "cost_per_unit"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Papa", "Verduras", "kg", 10, 5, 1.5}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	rows, err := ReadImportFile(&buf)
	require.NoError(t, err)
	parsed, problems := ParseImportRows(rows)
	assert.Empty(t, problems)
	require.Len(t, parsed, 1)
	assert.Equal(t, "Papa", parsed[0].Name)
	assert.Equal(t, 1.5, parsed[0].CostPerUnit)
}

func TestParseDateRange(t *testing.T) {
	from, to, err := parseDateRange("2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", from.Format("2006-01-02"))
	assert.Equal(t, "2026-04-01", to.Format("2006-01-02"))

	_, _, err = parseDateRange("03/01/2026", "")
	assert.Error(t, err)
}
