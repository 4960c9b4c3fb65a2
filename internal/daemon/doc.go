// Package daemon owns the long-running packet intake process.
//
// Ownership boundary:
// - one listener per configured (transport, format, addr)
// - periodic draining of every listener queue
// - bounded recent-packet log
// - status HTTP surface (/health, /ready, /metrics, /listeners, /recent)
//
// The daemon does not act on decoded values; it records and reports them.
package daemon
