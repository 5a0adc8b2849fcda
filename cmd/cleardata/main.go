// Command cleardata drops every table and re-applies the migrations,
// leaving an empty schema.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"cdr.dev/slog/v3"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/prudhvinik1/devicetrack/internal/config"
	"github.com/prudhvinik1/devicetrack/internal/database"
	"github.com/prudhvinik1/devicetrack/internal/logging"
)

func main() {
	yes := pflag.BoolP("yes", "y", false, "skip the confirmation prompt")
	pflag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, closeLog, err := logging.New(os.Stderr, logging.Options{Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer closeLog()
	ctx := context.Background()

	if !*yes && !confirm(os.Stdin) {
		logger.Info(ctx, "aborted, nothing was deleted")
		return
	}

	if err := database.Reset(cfg.DatabaseURL); err != nil {
		logger.Fatal(ctx, "reset failed", slog.Error(err))
	}
	logger.Info(ctx, "all data deleted, schema recreated")
}

func confirm(in *os.File) bool {
	fmt.Print("This deletes ALL users, projects, devices and logs. Type 'yes' to continue: ")
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(answer) == "yes"
}
