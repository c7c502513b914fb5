package main

import (
	"flag"
	"fmt"
)

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	doc := fs.String("doc", "", "path to the design document JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := ProjectConfig{
		Version:      "1",
		DocumentPath: *doc,
		StoragePath:  defaultStoragePath,
		LogLevel:     "info",
		LogFormat:    "text",
	}
	if err := writeProjectConfig(cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", configFile)
	if *doc == "" {
		fmt.Println("set document_path in the config or pass --doc to commands")
	}
	return nil
}
