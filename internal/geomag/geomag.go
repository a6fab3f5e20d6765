// Package geomag 地磁模型查询
// Magnetic declination lookup backed by the IGRF spherical-harmonic model.
// The model instance is process-lifetime and shared by every caller.
package geomag

import (
	"math"
	"sync"
	"time"

	"github.com/proway2/go-igrf/igrf"
)

// MaxPlausibleDeclination bounds the band in which a lookup result is
// trusted; real-world declination stays well inside ±30 degrees outside the
// immediate vicinity of the magnetic poles.
const MaxPlausibleDeclination = 30.0

type fieldModel interface {
	IGRF(lat, lon, alt, date float64) (igrf.IGRFresults, error)
}

var loadModel = sync.OnceValue(func() fieldModel {
	return igrf.New()
})

// DecimalYear converts a wall-clock instant to the fractional-year epoch the
// model evaluates at.
func DecimalYear(t time.Time) float64 {
	t = t.UTC()
	return float64(t.Year()) + float64(t.YearDay()-1)/365.25
}

// Declination returns the magnetic declination in degrees, east-positive,
// at the given position and altitude in meters, evaluated at now.
func Declination(lat, lon, altMeters float64) (float64, error) {
	return DeclinationAt(lat, lon, altMeters, time.Now())
}

// DeclinationAt is Declination at an explicit instant, used by tests.
func DeclinationAt(lat, lon, altMeters float64, t time.Time) (float64, error) {
	result, err := loadModel().IGRF(lat, lon, altMeters/1000.0, DecimalYear(t))
	if err != nil {
		return 0, err
	}
	return result.Declination, nil
}

// Plausible reports whether a declination value is usable for heading
// correction.
func Plausible(decl float64) bool {
	if math.IsNaN(decl) || math.IsInf(decl, 0) {
		return false
	}
	return math.Abs(decl) <= MaxPlausibleDeclination
}
