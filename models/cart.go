package models

// CartEntry is one ingredient amount drawn from a recipe in a shopping cart.
type CartEntry struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

// AggregatedLine is the summed total of every CartEntry sharing a name and unit.
type AggregatedLine struct {
	Name            string
	MeasurementUnit string
	TotalAmount     int
}

// Page is the envelope for paginated list responses.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
