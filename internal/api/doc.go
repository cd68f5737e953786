// Package api hosts the HTTP server, middleware, and REST handlers. Notable
// routes:
//   - GET /healthz and /readyz for probes.
//   - GET /metrics for Prometheus scraping.
//   - POST /v1/feeds/fetch and GET /v1/feeds/latest for merged feed batches.
//   - POST /v1/articles/metadata for single or batched article lookups.
//   - POST /v1/crawls and GET /v1/crawls/{job_id} for async listing crawls.
//
// Every error response is a JSON {"success":false,"error":"..."} envelope.
package api
