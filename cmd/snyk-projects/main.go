// Command snyk-projects lists the projects visible to a Snyk API token,
// with their latest issue counts.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"

	snyk "github.com/tphakala/go-snyk"
)

func main() {
	orgID := pflag.String("org", "", "organization id (default: all organizations)")
	timeout := pflag.Duration("timeout", 2*time.Minute, "overall request deadline")
	verbose := pflag.BoolP("verbose", "v", false, "log API requests")
	pflag.Parse()

	// Optional: pick up SNYK_TOKEN from a local .env file.
	_ = godotenv.Load()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: logLevel(*verbose),
	}))

	if err := run(*orgID, *timeout, logger); err != nil {
		logger.Error("snyk-projects failed", "error", err)
		os.Exit(1)
	}
}

func logLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func run(orgID string, timeout time.Duration, logger *slog.Logger) error {
	token, err := snyk.TokenFromEnv()
	if err != nil {
		return err
	}

	client, err := snyk.NewClient(
		snyk.WithToken(token),
		snyk.WithRetry(3, time.Second, 2),
		snyk.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	projects := client.Projects
	if orgID != "" {
		projects = client.Org(orgID).Projects()
	}

	for project, err := range projects.List(ctx) {
		if err != nil {
			return err
		}
		counts := project.IssueCounts
		fmt.Printf("%s  %s [%s]  critical=%d high=%d medium=%d low=%d\n",
			project.ID, project.Name, project.Origin,
			counts.Critical, counts.High, counts.Medium, counts.Low)
	}
	return nil
}
