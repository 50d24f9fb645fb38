// Package estimation provides parametric and Bayesian summaries of numeric samples.
//
// EstimateInterval computes a Student-t confidence interval for the mean,
// EffectSize computes Cohen's d between two groups and AdvancedEstimate
// returns MLE and MAP point estimates together with a Gaussian kernel
// density curve. Every operation needs at least two observations.
//
// Note the two standard deviation conventions: interval and effect-size
// calculations use the sample estimator (n-1), MLE uses the population
// estimator (n).
package estimation
