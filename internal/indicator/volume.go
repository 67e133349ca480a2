package indicator

// VolumeRatio compares the latest volume against the mean of the
// preceding `period` volumes. A ratio above 1 means the current bar
// trades heavier than its recent average. Returns 1 (no confirmation
// either way) when there is not enough history or the mean is zero.
func VolumeRatio(volumes []int64, period int) float64 {
	if period <= 0 || len(volumes) < period+1 {
		return 1
	}
	window := volumes[len(volumes)-period-1 : len(volumes)-1]
	var sum int64
	for _, v := range window {
		sum += v
	}
	if sum == 0 {
		return 1
	}
	mean := float64(sum) / float64(period)
	return float64(volumes[len(volumes)-1]) / mean
}
