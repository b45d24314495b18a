// Package model defines the shared data types for the county crosswalk toolkit.
package model

import (
	geom "github.com/twpayne/go-geom"
)

// CensusYears is the set of decennial census years with NHGIS county boundary
// files supported by the toolkit.
var CensusYears = []int{1900, 1910, 1920, 1930, 1940}

// ValidCensusYear reports whether year is a supported census year.
func ValidCensusYear(year int) bool {
	for _, y := range CensusYears {
		if y == year {
			return true
		}
	}
	return false
}

// CountyPolygon is one county's boundary in a specific census year.
// (Year, StateCode, CountyCode) uniquely identifies a county within that
// year's boundary set; GISJoin is the NHGIS join key carried through to
// output so downstream merges can use either identifier.
type CountyPolygon struct {
	Year       int
	GISJoin    string
	StateCode  string // ICPSR state code
	CountyCode string // ICPSR county code
	Name       string
	StateName  string
	Geometry   *geom.MultiPolygon
	Area       float64 // planar area in the working CRS units
}

// ID returns the (state, county) identifier used for deterministic ordering
// and tie-breaking.
func (c CountyPolygon) ID() string {
	return c.StateCode + "-" + c.CountyCode
}

// Less orders counties lexicographically by (StateCode, CountyCode).
func (c CountyPolygon) Less(o CountyPolygon) bool {
	if c.StateCode != o.StateCode {
		return c.StateCode < o.StateCode
	}
	return c.CountyCode < o.CountyCode
}

// OverlapRecord is the geometric intersection of one source-year county with
// one target-year county. Only materialized when the intersection area is
// above the noise tolerance.
type OverlapRecord struct {
	SourceIdx          int
	TargetIdx          int
	IntersectionArea   float64
	SourceOverlapShare float64 // intersection area / source county area, in [0,1]
}

// CrosswalkEntry is one row of the output mapping: a source-year county and a
// target-year county it overlaps, with the share of the source county's area
// covered by the target county.
type CrosswalkEntry struct {
	SourceYear       int
	SourceGISJoin    string
	SourceStateCode  string
	SourceCountyCode string
	SourceName       string
	SourceStateName  string

	TargetYear       int
	TargetGISJoin    string
	TargetStateCode  string
	TargetCountyCode string
	TargetName       string
	TargetStateName  string

	OverlapShare float64
}

// Warning kinds for per-county, non-fatal problems.
const (
	WarnGeometryRepairFailure = "geometry_repair_failure"
	WarnCoverageGap           = "coverage_gap"
)

// CountyWarning records a county excluded from a run and why. Warnings are
// accumulated and reported alongside the output, never silently dropped.
type CountyWarning struct {
	Kind    string
	Year    int
	GISJoin string
	Name    string
	Reason  string
}
