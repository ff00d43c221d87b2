// Package config defines the settings shared by the manifest binaries and
// provides helpers to load, validate and save them in YAML format.
//
// Upstream credentials may also come from the environment; environment
// values take precedence over the file.
package config
