// Package profile implements persistence for stored package profiles.
//
// The FileRepository keeps an ordered list of profile documents as JSON on
// disk and exposes the Repository interface the manifest service depends on.
package profile
