package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"apbdcli/internal/app"
	"apbdcli/pkg/contracts"
)

func main() {
	noBrowser := flag.Bool("no-browser", false, "do not open the dashboard in a browser on startup")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	// Create application instance
	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	application.DisableBrowser = *noBrowser

	// Run until interrupted
	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
