// Package utils
package utils

import (
	"math"
	"testing"
)

func TestWrap360(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0, 0},
		{360, 0},
		{720, 0},
		{-1, 359},
		{-360, 0},
		{359.5, 359.5},
		{361, 1},
		{-725, 355},
	}
	pass := 0
	fail := 0
	for _, test := range tests {
		result := Wrap360(test.input)
		if !IsEqual(result, test.expected) {
			fail++
			t.Errorf("Wrap360(%v) = %v; expected %v", test.input, result, test.expected)
			continue
		}
		pass++
	}
	t.Logf("TestWrap360: %d pass, %d fail", pass, fail)
}

func TestWrap360Idempotent(t *testing.T) {
	for _, x := range []float64{-1000, -360, -0.5, 0, 0.5, 123.456, 359.999, 360, 3600} {
		once := Wrap360(x)
		twice := Wrap360(once)
		if once != twice {
			t.Errorf("Wrap360 not idempotent for %v: %v != %v", x, once, twice)
		}
		if once < 0 || once >= 360 {
			t.Errorf("Wrap360(%v) = %v, out of [0, 360)", x, once)
		}
	}
}

func TestBearing(t *testing.T) {
	tests := []struct {
		lat1, lon1, lat2, lon2 float64
		expectedHeading        int
		ok                     bool
	}{
		// due east along the equator
		{0, 0, 0, 1, 90, true},
		// due west along the equator
		{0, 1, 0, 0, 270, true},
		// due north
		{50, 8, 51, 8, 0, true},
		// due south
		{51, 8, 50, 8, 180, true},
		// coincident points are undefined
		{50, 8, 50, 8, 0, false},
	}
	pass := 0
	fail := 0
	for _, test := range tests {
		heading, _, ok := Bearing(test.lat1, test.lon1, test.lat2, test.lon2)
		if ok != test.ok || (ok && heading != test.expectedHeading) {
			fail++
			t.Errorf("Bearing(%v, %v, %v, %v) = %d, %v; expected %d, %v",
				test.lat1, test.lon1, test.lat2, test.lon2, heading, ok, test.expectedHeading, test.ok)
			continue
		}
		pass++
	}
	t.Logf("TestBearing: %d pass, %d fail", pass, fail)
}

func TestBearingNonFinite(t *testing.T) {
	if _, _, ok := Bearing(math.NaN(), 0, 1, 1); ok {
		t.Error("Bearing accepted NaN latitude")
	}
	if _, _, ok := Bearing(0, math.Inf(1), 1, 1); ok {
		t.Error("Bearing accepted infinite longitude")
	}
}

func TestBearingDistance(t *testing.T) {
	// one degree of latitude is about 111 km
	_, distance, ok := Bearing(50, 8, 51, 8)
	if !ok {
		t.Fatal("Bearing returned not ok for valid input")
	}
	if distance < 110000 || distance > 112500 {
		t.Errorf("distance for one degree latitude = %f m, expected about 111 km", distance)
	}
}

func TestDistanceInNauticalMiles(t *testing.T) {
	// 1 degree along the equator is 60 nm on the sphere
	distance := DistanceInNauticalMiles(0, 0, 0, 1)
	if math.Abs(distance-60.04) > 0.5 {
		t.Errorf("DistanceInNauticalMiles(0,0,0,1) = %f; expected about 60", distance)
	}
}
