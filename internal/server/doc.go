// Package server exposes collections over HTTP.
//
// Routes:
//
//	GET  /health                       liveness
//	GET  /metrics                      Prometheus exposition
//	GET  /collections                  collection names with record counts
//	GET  /records                      query the default collection
//	GET  /collections/:name/records    query a named collection
//	POST /collections/:name/records    import a JSON array of records
//
// Query parameters follow query.ParseValues. Failures are reported as
// {"error", "code", "status", "field"}: 400 for unknown fields and invalid
// arguments, 404 for unknown collections.
package server
