package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Secrets may live in a .env next to the binary; absence is fine.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "deepsift",
		Short: "DeepSift deepfake detection bot",
		Long:  "WhatsApp bot and REST API for detecting AI-generated images, videos, and text.",
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
	root.AddCommand(serve)

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
	root.AddCommand(migrate)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
