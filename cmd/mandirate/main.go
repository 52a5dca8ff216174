// Mandirate is a multilingual mandi price assistant. It answers short spoken
// or typed questions such as "Aloo ka rate?" in English or Hindi over
// WebSocket, gRPC and MQTT sessions.
//
// Usage:
//
//	mandirate serve [--config /path/to/mandirate.yaml]
//	mandirate ask "2 kg tamatar total price" --target en
//	mandirate prices [--billing]
//
// @title       mandirate API
// @version     1.0
// @description Mandi price queries, live market listings and billing items.
// @BasePath    /
package main

import (
	"os"

	"github.com/nadzzz/mandirate/cmd/mandirate/commands"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := commands.Execute(version); err != nil {
		os.Exit(1)
	}
}
