package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/zurustar/azscript/pkg/app"
)

//go:embed scenarios
var embeddedScenarios embed.FS

func main() {
	application := app.New(embeddedScenarios)
	if err := application.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
