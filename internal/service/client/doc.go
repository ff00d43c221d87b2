// Package client implements the manifestctl commands.
//
// Every command connects to the manifest server, performs one call and prints
// the result as indented JSON.
package client
