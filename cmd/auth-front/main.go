package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dgellow/auth-front/internal"
	"github.com/dgellow/auth-front/internal/config"
	"github.com/dgellow/auth-front/internal/log"
)

var BuildVersion = "dev"

func validateConfig(cfg *config.Config) error {
	result := cfg.Validate()

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(result.Errors))
		for _, err := range result.Errors {
			if err.Path != "" {
				fmt.Printf("  - %s: %s\n", err.Path, err.Message)
			} else {
				fmt.Printf("  - %s\n", err.Message)
			}
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(result.Warnings))
		for _, warn := range result.Warnings {
			if warn.Path != "" {
				fmt.Printf("  - %s: %s\n", warn.Path, warn.Message)
			} else {
				fmt.Printf("  - %s\n", warn.Message)
			}
		}
	}

	fmt.Println()
	if len(result.Errors) == 0 {
		fmt.Println("Result: PASS")
		return nil
	}
	fmt.Println("Result: FAIL")
	return fmt.Errorf("validation failed: %d error(s), %d warning(s)", len(result.Errors), len(result.Warnings))
}

func main() {
	version := flag.Bool("version", false, "print version and exit")
	validate := flag.Bool("validate", false, "validate configuration from the environment and exit")
	flag.Parse()

	if *version {
		fmt.Println(BuildVersion)
		return
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.LogError("Failed to load config: %v", err)
		os.Exit(1)
	}

	if *validate {
		if err := validateConfig(cfg); err != nil {
			os.Exit(1)
		}
		return
	}

	if result := cfg.Validate(); !result.IsValid() {
		for _, e := range result.Errors {
			log.LogErrorWithFields("main", "Invalid configuration", map[string]any{
				"path":  e.Path,
				"error": e.Message,
			})
		}
		os.Exit(1)
	}

	log.LogInfoWithFields("main", "Starting auth-front", map[string]any{
		"version": BuildVersion,
		"addr":    cfg.Addr,
	})

	app, err := internal.NewAuthFront(cfg)
	if err != nil {
		log.LogError("Failed to build application: %v", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		log.LogError("Server error: %v", err)
		os.Exit(1)
	}
}
