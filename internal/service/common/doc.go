// Package common holds helpers shared by several services.
//
// It provides a gRPC client wrapper for the manifest service with call
// timeouts and detects the current user and host for the audit trail.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
