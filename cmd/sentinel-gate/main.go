// Command mcpp-gateway runs the MCPP gateway.
package main

import "github.com/mcpp-project/mcpp-core/cmd/sentinel-gate/cmd"

func main() {
	cmd.Execute()
}
