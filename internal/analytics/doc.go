// Package analytics filters, aggregates and compares the Stress PnL fact
// table. Every function is pure: inputs are never modified and results
// depend only on the arguments.
package analytics
