// Package main provides the entry point for the HireWire API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hirewire",
	Short: "HireWire recruiting API server",
	Long: "HireWire is a recruiting backend: hiring managers post jobs, upload resumes " +
		"for AI scoring, and run AI voice interviews; applicants browse the public job " +
		"board and track their applications.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
