// Package dedupe provides a TTL cache used to coalesce repeated
// reconciliation triggers for the same message within one grace window.
package dedupe
