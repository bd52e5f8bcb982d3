// Package web serves the playground over HTTP with gin: an HTML form for
// picking a provider, model and prompt template, a JSON API exposing the same
// operations, a health check and the Prometheus metrics endpoint.
package web
