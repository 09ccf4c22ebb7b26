package domain

import "time"

// Measurement is the fixed time-series measurement name.
const Measurement = "dsmr"

// LocationTag is the tag key carrying the installation label.
const LocationTag = "location"

// MetricSample is a catalog metric with the value taken from one telegram.
type MetricSample struct {
	Name  string
	Field Field
	Value float64
}

// Point is a single time-series point as written to the push sink.
type Point struct {
	Measurement string
	Tags        map[string]string
	Field       string
	Value       float64
	Time        time.Time
}
