// Package http contains the HTTP handlers for the cleansing API: dataset
// upload, run lookup, artifact download, health, and the WebSocket
// endpoint. All error responses follow RFC 7807.
package http
