// Package carweaver is a client for the CarWeaver product-model REST API.
//
// Authentication state lives in an explicit Session value that callers pass
// to every request. Each request starts by refreshing the session when it is
// about to expire.
package carweaver
