package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/phrasebook/internal/cli"
	"github.com/mrlokans/phrasebook/internal/config"
	"github.com/mrlokans/phrasebook/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "reindex":
		cmd = cli.NewReindexCommand()
	case "register-device":
		cmd = cli.NewDeviceCommand("register")
	case "rotate-token":
		cmd = cli.NewDeviceCommand("rotate")
	case "list-devices":
		cmd = cli.NewDeviceCommand("list")
	case "version":
		fmt.Printf("phrasebook %s (%s)\n", Version, Commit)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve            Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  reindex          Rebuild the similarity index from the database\n")
	fmt.Fprintf(os.Stderr, "  register-device  Register a device and print its sync token\n")
	fmt.Fprintf(os.Stderr, "  rotate-token     Issue a new token for a registered device\n")
	fmt.Fprintf(os.Stderr, "  list-devices     List registered devices\n")
	fmt.Fprintf(os.Stderr, "  version          Print version information\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
