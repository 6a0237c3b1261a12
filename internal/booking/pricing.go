package booking

// TotalCents prices a stay: flat nightly rate times nights, in integer minor
// units so repeated additions in aggregation cannot drift.
func TotalCents(nightlyRateCents int, iv Interval) int {
	return nightlyRateCents * iv.Nights()
}
