// Package report prints the recorded contents of a sensor series.
//
// A Reporter runs once at the end of a sensor run, natural or
// interrupted, and lists every reading the store holds for the series.
// Each line uses the same format as the live per-sample echo so output
// from a run and its final listing read alike.
package report
