// Command import pushes a JSON export file through the /migrate endpoint.
// It is the command-line counterpart of the UI's one-shot file importer.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hnpham/stockpile/internal/core/domain"
	"github.com/hnpham/stockpile/pkg/client"
)

var rootCmd = &cobra.Command{
	Use:   "import <export.json>",
	Short: "Bulk-import an inventory JSON export",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().String("server", "http://localhost:8080", "inventory API base URL")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read export file: %w", err)
	}

	var payload domain.MigrationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("parse export file: %w", err)
	}

	server, _ := cmd.Flags().GetString("server")
	c := client.New(server)
	if !c.Online() {
		return fmt.Errorf("inventory API unreachable at %s", server)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := c.Migrate(ctx, payload)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	for category, count := range result.Imported {
		log.Printf("imported %s: %d records", category, count)
	}
	for _, e := range result.Errors {
		log.Printf("error: %s", e)
	}
	if !result.Success {
		return fmt.Errorf("migration finished with errors")
	}
	log.Println(result.Message)
	return nil
}
