// Package routing holds the per-guild routing configuration store and the
// pure rule evaluator that classifies incoming messages against it.
package routing
