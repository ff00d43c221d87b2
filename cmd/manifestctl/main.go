// Command manifestctl talks to a manifest-server.
package main

import "github.com/oshokin/release-manifest/cmd/manifestctl/cmd"

func main() {
	cmd.Execute()
}
