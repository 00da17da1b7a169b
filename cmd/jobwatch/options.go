package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/luciusscala/hackmitmentra/internal/config"
	"github.com/luciusscala/hackmitmentra/internal/view"
)

const envBaseURL = "JOBWATCH_BASE_URL"

type options struct {
	BaseURL  string
	Interval time.Duration
	Timeout  time.Duration
	Once     bool
	View     string
	Search   string
	Filter   view.Filter
	Limit    int
	LogLevel string
}

// newRootCommand builds the jobwatch command. exec receives the validated options.
func newRootCommand(exec func(ctx context.Context, opts options) error) *cobra.Command {
	opts := options{
		BaseURL: config.DefaultFeedBaseURL,
	}
	if env := strings.TrimSpace(os.Getenv(envBaseURL)); env != "" {
		opts.BaseURL = env
	}

	var status string

	cmd := &cobra.Command{
		Use:   "jobwatch",
		Short: "Watch media job status from the terminal",
		Long: "jobwatch polls the media backend's job list and prints the dashboard or library view.\n" +
			"While watching, type r and press enter to retry immediately.",
		Version:       "1.0.0",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.complete(status); err != nil {
				return err
			}
			return exec(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.BaseURL, "base-url", opts.BaseURL, "media backend base URL (env "+envBaseURL+")")
	flags.DurationVar(&opts.Interval, "interval", 0, "poll interval (default 5s for dashboard, 10s for library)")
	flags.DurationVar(&opts.Timeout, "timeout", config.DefaultRequestTimeout, "per-request timeout")
	flags.BoolVar(&opts.Once, "once", false, "fetch once, print and exit")
	flags.StringVar(&opts.View, "view", "dashboard", "view to show: dashboard or library")
	flags.StringVarP(&opts.Search, "query", "q", "", "library filename search")
	flags.StringVar(&status, "status", "all", "library status filter: all, completed, processing, failed")
	flags.IntVar(&opts.Limit, "recent", config.DefaultRecentLimit, "recent jobs shown on the dashboard")
	flags.StringVar(&opts.LogLevel, "log-level", "warn", "log level: debug, info, warn, error")

	return cmd
}

// complete fills view-dependent defaults and validates the flag values
func (o *options) complete(status string) error {
	switch o.View {
	case "dashboard":
		if o.Interval == 0 {
			o.Interval = config.DefaultDashboardInterval
		}
	case "library":
		if o.Interval == 0 {
			o.Interval = config.DefaultLibraryInterval
		}
	default:
		return fmt.Errorf("unknown view %q (want dashboard or library)", o.View)
	}

	if o.Interval < 0 {
		return fmt.Errorf("interval must be positive")
	}

	filter, err := view.ParseFilter(status)
	if err != nil {
		return err
	}
	o.Filter = filter

	probe := config.Config{Feed: config.FeedConfig{BaseURL: o.BaseURL, RequestTimeout: o.Timeout}}
	return probe.ValidateFeedConfig()
}
