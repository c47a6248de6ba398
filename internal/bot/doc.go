// Package bot connects gateway events to the routing evaluator, the admin
// command processor, and the reconciliation engine.
package bot
