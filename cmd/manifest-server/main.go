// Command manifest-server serves manifest generation and profile management over gRPC.
package main

import "github.com/oshokin/release-manifest/cmd/manifest-server/cmd"

func main() {
	cmd.Execute()
}
