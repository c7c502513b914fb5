package main

import (
	"fmt"
	"os"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch command := os.Args[1]; command {
	case "scan":
		err = runScan(os.Args[2:])
	case "components":
		err = runComponents(os.Args[2:])
	case "ignores":
		err = runIgnores(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "watch":
		err = runWatch(os.Args[2:])
	case "init":
		err = runInit(os.Args[2:])
	case "version":
		fmt.Printf("tokenlens %s\n", version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: tokenlens <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  scan        Scan a document for design-variable usage")
	fmt.Println("  components  Scan a document for component usage")
	fmt.Println("  ignores     Manage the suppression lists (list|add|remove)")
	fmt.Println("  serve       Start the MCP server over stdio")
	fmt.Println("  watch       Rescan the document whenever it changes")
	fmt.Println("  init        Write a .tokenlens/config.yaml skeleton")
	fmt.Println("  version     Print version")
	fmt.Println("  help        Show this help message")
}
