// Package app wires the application together: configuration, logging,
// metrics, the WebSocket hub, the cleansing pipeline, services, the chi
// router, and the HTTP server with graceful shutdown.
package app
