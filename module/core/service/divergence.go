package service

import (
	"fmt"

	"github.com/yopyKO/pwa-camping-car-final/module/core/domain"
)

const (
	DefaultDivergenceStride      = 5
	DefaultDivergenceThresholdKm = 0.5
)

// DivergenceAnalyzer finds the points where a truck path leaves the car path.
type DivergenceAnalyzer struct {
	stride      int
	thresholdKm float64
}

// NewDivergenceAnalyzer falls back to the defaults for non-positive values.
func NewDivergenceAnalyzer(stride int, thresholdKm float64) *DivergenceAnalyzer {
	if stride <= 0 {
		stride = DefaultDivergenceStride
	}
	if thresholdKm <= 0 {
		thresholdKm = DefaultDivergenceThresholdKm
	}
	return &DivergenceAnalyzer{stride: stride, thresholdKm: thresholdKm}
}

// Analyze samples every stride-th truck point and compares it with the car
// point at the same index, clamped to the car path's last point. Samples
// farther apart than the threshold become waypoints. The truck path's final
// point is always appended, even when it was already sampled.
func (a *DivergenceAnalyzer) Analyze(car, truck domain.Path) ([]domain.Coordinate, error) {
	if len(car) == 0 {
		return nil, fmt.Errorf("%w: car path is empty", domain.ErrInvalidInput)
	}
	if len(truck) == 0 {
		return nil, fmt.Errorf("%w: truck path is empty", domain.ErrInvalidInput)
	}

	var waypoints []domain.Coordinate
	for i := 0; i < len(truck); i += a.stride {
		truckPoint := truck[i]
		carPoint := car[min(i, len(car)-1)]
		if HaversineKm(truckPoint, carPoint) > a.thresholdKm {
			waypoints = append(waypoints, truckPoint)
		}
	}
	waypoints = append(waypoints, truck[len(truck)-1])

	return waypoints, nil
}
