// Package stream serves Prometheus metrics and a websocket feed of kernel
// snapshots. Every websocket client gets its own freshly initialised
// five-body system, advanced between snapshots and paced by a rate limiter.
package stream
