package reports

import (
	"sort"
	"time"

	"gastro-backend/internal/models"
	"gastro-backend/internal/pricing"

	"github.com/shopspring/decimal"
)

type Summary struct {
	TotalSales    float64 `json:"total_sales"`
	TotalCost     float64 `json:"total_cost"`
	NetProfit     float64 `json:"net_profit"`
	AverageMargin float64 `json:"average_margin"`
	Growth        float64 `json:"growth"`
	SalesCount    int     `json:"sales_count"`
	PeriodDays    int     `json:"period_days"`
}

type MonthRow struct {
	Month  string  `json:"month"`
	Sales  float64 `json:"sales"`
	Costs  float64 `json:"costs"`
	Profit float64 `json:"profit"`
}

type CategoryRow struct {
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

type MarginRow struct {
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Cost   float64 `json:"cost"`
	Margin float64 `json:"margin"`
}

type PaymentRow struct {
	Method     models.PaymentMethod `json:"method"`
	Percentage float64              `json:"percentage"`
	Count      int                  `json:"count"`
	Total      float64              `json:"total"`
}

// Report bundles every section for export.
type Report struct {
	Summary    Summary       `json:"summary"`
	Monthly    []MonthRow    `json:"monthly_trend"`
	Categories []CategoryRow `json:"category_performance"`
	Margins    []MarginRow   `json:"profit_margins"`
	Payments   []PaymentRow  `json:"payment_methods"`
	ExportedAt time.Time     `json:"exported_at"`
}

func round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

// unitCosts maps recipe id to the cost of one serving.
func unitCosts(recipes []models.Recipe) map[uint]float64 {
	costs := make(map[uint]float64, len(recipes))
	for _, r := range recipes {
		servings := r.Servings
		if servings <= 0 {
			servings = 1
		}
		costs[r.ID] = r.Cost / float64(servings)
	}
	return costs
}

// saleCost is the ingredient cost of the recipe lines of a sale. Free-text
// lines have no known cost.
func saleCost(sale models.Sale, costs map[uint]float64) float64 {
	var total float64
	for _, it := range sale.Items {
		if it.RecipeID == nil {
			continue
		}
		total += costs[*it.RecipeID] * float64(it.Quantity)
	}
	return total
}

func totalOf(sales []models.Sale) float64 {
	var t float64
	for _, s := range sales {
		t += s.Total
	}
	return t
}

// Growth is the change of current over previous in percent, 0 without a
// previous period.
func Growth(current, previous float64) float64 {
	if previous <= 0 {
		return 0
	}
	return round1((current - previous) / previous * 100)
}

func buildSummary(current, previous []models.Sale, recipes []models.Recipe, days int) Summary {
	costs := unitCosts(recipes)
	sales := totalOf(current)
	var cost float64
	for _, s := range current {
		cost += saleCost(s, costs)
	}

	var avgMargin float64
	if len(recipes) > 0 {
		for _, r := range recipes {
			avgMargin += r.Margin
		}
		avgMargin /= float64(len(recipes))
	}

	return Summary{
		TotalSales:    pricing.RoundMoney(sales),
		TotalCost:     pricing.RoundMoney(cost),
		NetProfit:     pricing.RoundMoney(sales - cost),
		AverageMargin: round1(avgMargin),
		Growth:        Growth(sales, totalOf(previous)),
		SalesCount:    len(current),
		PeriodDays:    days,
	}
}

// buildMonthly returns one row per calendar month ending with the month of
// now, oldest first. Months without sales are kept as zero rows.
func buildMonthly(sales []models.Sale, recipes []models.Recipe, now time.Time, months int) []MonthRow {
	costs := unitCosts(recipes)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1-months, 0)

	rows := make([]MonthRow, months)
	for i := range rows {
		rows[i].Month = first.AddDate(0, i, 0).Format("2006-01")
	}
	for _, s := range sales {
		at := s.CreatedAt.In(now.Location())
		i := (at.Year()-first.Year())*12 + int(at.Month()) - int(first.Month())
		if i < 0 || i >= months {
			continue
		}
		rows[i].Sales += s.Total
		rows[i].Costs += saleCost(s, costs)
	}
	for i := range rows {
		rows[i].Sales = pricing.RoundMoney(rows[i].Sales)
		rows[i].Costs = pricing.RoundMoney(rows[i].Costs)
		rows[i].Profit = pricing.RoundMoney(rows[i].Sales - rows[i].Costs)
	}
	return rows
}

// buildCategories groups recipe lines by category, best revenue first.
func buildCategories(sales []models.Sale) []CategoryRow {
	byCat := map[string]*CategoryRow{}
	for _, s := range sales {
		for _, it := range s.Items {
			if it.RecipeID == nil {
				continue
			}
			row, ok := byCat[it.Category]
			if !ok {
				row = &CategoryRow{Category: it.Category}
				byCat[it.Category] = row
			}
			row.Quantity += it.Quantity
			row.Revenue += it.Total
		}
	}
	rows := make([]CategoryRow, 0, len(byCat))
	for _, row := range byCat {
		row.Revenue = pricing.RoundMoney(row.Revenue)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Revenue != rows[j].Revenue {
			return rows[i].Revenue > rows[j].Revenue
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}

// buildMargins lists the ten recipes with the highest margin.
func buildMargins(recipes []models.Recipe) []MarginRow {
	rows := make([]MarginRow, 0, len(recipes))
	for _, r := range recipes {
		rows = append(rows, MarginRow{Name: r.Name, Price: r.Price, Cost: r.Cost, Margin: round1(r.Margin)})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Margin > rows[j].Margin })
	if len(rows) > 10 {
		rows = rows[:10]
	}
	return rows
}

func buildPayments(sales []models.Sale) []PaymentRow {
	byMethod := map[models.PaymentMethod]*PaymentRow{}
	var count int
	for _, s := range sales {
		if s.PaymentMethod == "" {
			continue
		}
		row, ok := byMethod[s.PaymentMethod]
		if !ok {
			row = &PaymentRow{Method: s.PaymentMethod}
			byMethod[s.PaymentMethod] = row
		}
		row.Count++
		row.Total += s.Total
		count++
	}
	rows := make([]PaymentRow, 0, len(byMethod))
	for _, row := range byMethod {
		row.Total = pricing.RoundMoney(row.Total)
		row.Percentage = round1(float64(row.Count) / float64(count) * 100)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Method < rows[j].Method
	})
	return rows
}
