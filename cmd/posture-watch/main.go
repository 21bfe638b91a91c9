// posture-watch - follow a posture dashboard from the terminal
//
//	posture-watch -url http://localhost:8080
//	posture-watch -dismiss
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-posture/internal/log"
	"github.com/teslashibe/go-posture/pkg/watch"
)

func main() {
	base := flag.String("url", "http://localhost:8080", "Dashboard base URL")
	dismiss := flag.Bool("dismiss", false, "Dismiss the current reminder and exit")
	level := flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	flag.Parse()

	log.Init(*level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *dismiss {
		if err := watch.Dismiss(ctx, *base); err != nil {
			log.Error("dismiss failed", "error", err)
			os.Exit(1)
		}
		fmt.Println("✅ Reminder dismissed")
		return
	}

	err := watch.Follow(ctx, *base, func(s watch.Status) {
		fmt.Println(watch.Format(s))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("watch stopped", "error", err)
		os.Exit(1)
	}
}
