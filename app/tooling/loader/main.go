// This program reads grid telemetry from a CSV file and submits each row to
// a running node for mining into the chain.
package main

import "github.com/gridledger/gridledger/app/tooling/loader/cmd"

func main() {
	cmd.Execute()
}
