// Package admincmd parses and executes the administrative commands that
// mutate a guild's routing configuration. Text commands and slash
// interactions decode into the same Command type and share one executor,
// so identical outcomes always produce identical reply text.
package admincmd
