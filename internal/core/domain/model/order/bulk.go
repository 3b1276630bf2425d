package order

// BulkSummary is the display aggregate of a bulk order: parcel count and total
// declared weight. It is derived from the parcels and stored alongside them.
type BulkSummary struct {
	totalParcels  int
	totalWeightKg float64
}

func newBulkSummary(parcels []*Parcel) BulkSummary {
	s := BulkSummary{totalParcels: len(parcels)}
	for _, p := range parcels {
		s.totalWeightKg += p.measurements.WeightKg()
	}
	return s
}

func (s BulkSummary) TotalParcels() int {
	return s.totalParcels
}

func (s BulkSummary) TotalWeightKg() float64 {
	return s.totalWeightKg
}
