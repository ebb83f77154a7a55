package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/LovationAdmin/foodgram-api/models"
)

// ShoppingCartFilename is the attachment name of the downloadable report.
const ShoppingCartFilename = "foodgram_shopping_cart.txt"

type ingredientKey struct {
	name string
	unit string
}

// AggregateCart groups entries by exact (name, unit), sums their amounts and
// orders the groups by total descending. Groups with equal totals keep the
// order in which they first appeared in entries.
func AggregateCart(entries []models.CartEntry) []models.AggregatedLine {
	index := make(map[ingredientKey]int, len(entries))
	lines := make([]models.AggregatedLine, 0, len(entries))

	for _, entry := range entries {
		key := ingredientKey{name: entry.Name, unit: entry.MeasurementUnit}
		if i, ok := index[key]; ok {
			lines[i].TotalAmount += entry.Amount
			continue
		}
		index[key] = len(lines)
		lines = append(lines, models.AggregatedLine{
			Name:            entry.Name,
			MeasurementUnit: entry.MeasurementUnit,
			TotalAmount:     entry.Amount,
		})
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].TotalAmount > lines[j].TotalAmount
	})
	return lines
}

// RenderCartReport formats lines as "{name} ({unit}) - {total}", one per line.
func RenderCartReport(lines []models.AggregatedLine) string {
	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = fmt.Sprintf("%s (%s) - %d", line.Name, line.MeasurementUnit, line.TotalAmount)
	}
	return strings.Join(rendered, "\n")
}

// BuildShoppingCartReport aggregates entries and renders the plain-text report.
func BuildShoppingCartReport(entries []models.CartEntry) string {
	return RenderCartReport(AggregateCart(entries))
}
