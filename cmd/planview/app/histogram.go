package app

import "math"

const (
	defaultMinElevation = 0.0
	defaultMaxElevation = 1000.0

	// For 20 samples:
	// - 2% percentile  = first sample
	// - 98% percentile = last sample
	minimumSampleCount = 20

	// minimumRange keeps nearly flat terrain from being stretched over the
	// whole gradient.
	minimumRange = 20
)

// ElevationBounds is the elevation range the color gradient is stretched
// over.
type ElevationBounds struct {
	Min  float64 // 2nd percentile
	Max  float64 // 98th percentile
	Mean float64
}

func defaultElevationBounds() ElevationBounds {
	return ElevationBounds{
		Min:  defaultMinElevation,
		Max:  defaultMaxElevation,
		Mean: (defaultMinElevation + defaultMaxElevation) / 2,
	}
}

// ElevationHistogram counts elevations in one metre bins.
type ElevationHistogram struct {
	bins       map[int]uint64
	totalCount uint64
	minBin     int
	maxBin     int
	sum        float64
}

func NewElevationHistogram() *ElevationHistogram {
	return &ElevationHistogram{
		bins:   make(map[int]uint64),
		minBin: math.MaxInt32,
		maxBin: math.MinInt32,
	}
}

func getBinIndex(z float64) int {
	return int(math.Floor(z))
}

// Update adds an elevation. Nil and non-finite values are ignored.
func (h *ElevationHistogram) Update(z *float64) {
	if z == nil || math.IsNaN(*z) || math.IsInf(*z, 0) {
		return
	}

	bin := getBinIndex(*z)
	h.bins[bin]++
	h.totalCount++
	h.sum += *z

	h.minBin = min(h.minBin, bin)
	h.maxBin = max(h.maxBin, bin)
}

func (h *ElevationHistogram) Count() uint64 {
	return h.totalCount
}

func (h *ElevationHistogram) Clear() {
	h.bins = make(map[int]uint64)
	h.totalCount = 0
	h.sum = 0
	h.minBin = math.MaxInt32
	h.maxBin = math.MinInt32
}

// GetPercentileBounds returns the 2nd and 98th percentile bins, widened to
// at least minimumRange metres, with a 5% margin on both sides.
func (h *ElevationHistogram) GetPercentileBounds() ElevationBounds {
	if h.totalCount < minimumSampleCount {
		if h.totalCount == 0 {
			return defaultElevationBounds()
		}
		mean := h.sum / float64(h.totalCount)
		return ElevationBounds{
			Min:  math.Min(float64(h.minBin), mean-minimumRange/2),
			Max:  math.Max(float64(h.maxBin+1), mean+minimumRange/2),
			Mean: mean,
		}
	}

	target := max(h.totalCount*2/100, 1)

	var count uint64
	lo, hi := h.minBin, h.maxBin

	for bin := h.minBin; bin <= h.maxBin; bin++ {
		count += h.bins[bin]
		if count >= target {
			lo = bin
			break
		}
	}

	count = 0
	for bin := h.maxBin; bin >= h.minBin; bin-- {
		count += h.bins[bin]
		if count >= target {
			hi = bin + 1
			break
		}
	}

	if hi-lo < minimumRange {
		center := (hi + lo) / 2
		lo = center - minimumRange/2
		hi = center + minimumRange/2
	}

	margin := float64(hi-lo) * 5 / 100
	return ElevationBounds{
		Min:  float64(lo) - margin,
		Max:  float64(hi) + margin,
		Mean: h.sum / float64(h.totalCount),
	}
}
