// Package ratio computes the fixed APBD financial ratio set and renders the
// rule-based Indonesian interpretation sentences.
//
// Compute is a pure function from aggregated totals to a RatioSet. Two
// interpretation modes exist side by side: Interpret walks the named ratio
// set with per-ratio threshold bands, and InterpretGeneric applies a single
// coarse band scale to an arbitrary named percentage. The two scales differ
// on purpose and must not be merged.
package ratio
