// Package reconcile executes the delayed repost-then-delete sequence that
// moves misplaced commands and tagged users' messages to the guild's
// command channel.
package reconcile
