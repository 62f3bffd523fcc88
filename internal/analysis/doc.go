// Package analysis runs the inferential statistics of the report: a
// two-sample t-test of batting in games with and without bangs, an OLS
// regression of runs scored on bangs, and Pearson correlations.
//
// The numeric work is done with gonum (stat, stat/distuv, mat). Every
// test drops missing (NaN) observations first. A test that cannot be
// computed records its error on the result instead of failing the run.
package analysis
