package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/luciusscala/hackmitmentra/internal/feed"
	"github.com/luciusscala/hackmitmentra/internal/poller"
	"github.com/luciusscala/hackmitmentra/internal/render"
	"github.com/luciusscala/hackmitmentra/internal/view"
	"github.com/luciusscala/hackmitmentra/shared/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand(func(ctx context.Context, opts options) error {
		return run(ctx, opts, os.Stdin, os.Stdout)
	})
	if err := cmd.ExecuteContext(ctx); err != nil {
		render.Error(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, in io.Reader, out io.Writer) error {
	appLogger, err := logger.New(&logger.Config{
		Level:      opts.LogLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: time.TimeOnly,
	})
	if err != nil {
		return err
	}

	client := feed.NewClient(&feed.Config{
		BaseURL:        opts.BaseURL,
		RequestTimeout: opts.Timeout,
		UserAgent:      "jobwatch",
		Logger:         appLogger.Logger,
	})
	defer client.Close()

	w := &watcher{
		opts:     opts,
		renderer: view.NewRenderer(mediaLinks{client}, opts.Limit),
		poller: poller.New(client, &poller.Config{
			Name:     opts.View,
			Interval: opts.Interval,
			Logger:   appLogger.Logger,
		}),
		out: out,
	}

	if opts.Once {
		state := w.poller.Poll(ctx)
		w.show(state)
		if state.Err != nil && !state.HasData {
			return state.Err
		}
		return nil
	}

	return w.watch(ctx, readRetries(in))
}

// mediaLinks points cards straight at the backend since there is no service in between
type mediaLinks struct {
	client *feed.Client
}

func (l mediaLinks) Play(taskID string) string {
	u, _ := l.client.DownloadURL(taskID)
	return u
}

func (l mediaLinks) Download(taskID string) string {
	return l.Play(taskID)
}

func (l mediaLinks) Retry(string) string {
	return "r"
}

type watcher struct {
	opts     options
	renderer *view.Renderer
	poller   *poller.Poller
	out      io.Writer
}

// watch polls on the interval and whenever a retry is requested, printing every settled state
func (w *watcher) watch(ctx context.Context, retries <-chan struct{}) error {
	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	w.show(w.poller.Poll(ctx))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case _, ok := <-retries:
			if !ok {
				retries = nil
				continue
			}
		}
		if ctx.Err() != nil {
			return nil
		}
		w.show(w.poller.Poll(ctx))
	}
}

func (w *watcher) show(state poller.State) {
	fmt.Fprintf(w.out, "\n== %s ==\n", time.Now().Format(time.TimeOnly))
	if w.opts.View == "library" {
		render.Library(w.out, w.renderer.Library(w.opts.View, state, view.LibraryQuery{
			Search: w.opts.Search,
			Filter: w.opts.Filter,
		}))
		return
	}
	render.Dashboard(w.out, w.renderer.Dashboard(w.opts.View, state))
}

// readRetries emits a signal for every "r" line on in
func readRetries(in io.Reader) <-chan struct{} {
	retries := make(chan struct{}, 1)
	go func() {
		defer close(retries)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			if strings.EqualFold(strings.TrimSpace(scanner.Text()), "r") {
				select {
				case retries <- struct{}{}:
				default:
				}
			}
		}
	}()
	return retries
}
