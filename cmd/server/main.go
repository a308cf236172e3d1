//	@title						Test Manager API
//	@version					1.0
//	@description				Lab test tracking: tests, attached files, logbook and links.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"os"

	"github.com/quixio/test-rig-demo-test-rig-simulator/cmd/server/cmd"
)

func main() {
	if err := cmd.RootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
