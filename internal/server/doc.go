// Package server exposes license analysis over HTTP.
//
// Routes:
//
//	POST   /v1/analyze             analyze a dependency list (?format= selects an export format)
//	GET    /v1/scan?path=          analyze the manifests under a workspace directory
//	GET    /v1/compat?a=&b=        check one license pair
//	POST   /v1/licenses/analyze    matrix, risk and recommendations for a license list
//	GET    /v1/licenses/{name}     normalized name and compatibility list
//	GET    /v1/licenses/{name}/text license text
//	GET    /v1/cache/stats         cache statistics
//	DELETE /v1/cache               clear the cache
//	GET    /metrics                Prometheus metrics
//	GET    /healthz                liveness
//
// Errors are JSON objects carrying the code from pkg/errors and the request
// ID that is also returned in the X-Request-ID header.
package server
