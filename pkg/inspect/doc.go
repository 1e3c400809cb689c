// Package inspect provides an embeddable HTTP inspector for fluxion
// runtimes.
//
// This package implements:
//   - Aggregate counters across one or more attached runtimes
//   - A ring of recent flushes for after-the-fact inspection
//   - A WebSocket stream of flush events for live tooling
//
// # Usage
//
//	ins := inspect.New(inspect.Options{})
//	ins.Attach(rt)
//	defer ins.Close()
//
//	go http.ListenAndServe("localhost:6060", ins.Handler())
//
// # Endpoints
//
//	GET /         endpoint index
//	GET /stats    aggregate counters (JSON)
//	GET /flushes  recent flushes, oldest first (JSON)
//	GET /ws       WebSocket stream of flush events
//
// # Stream Protocol
//
// The stream sends JSON messages. On connect the client receives a
// snapshot, then one message per flush:
//
//	{"type": "hello", "stats": {...}}
//	{"type": "flush", "flush": {"seq": 42, ...}}
//
// The stream is lossy under pressure: hook callbacks never block on
// slow clients, they drop stream events instead. Counters and the
// /flushes ring are exact.
package inspect
