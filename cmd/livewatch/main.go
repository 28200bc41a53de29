// livewatch tails a live-catalog server: it connects to the invalidation
// feed, re-fetches the product list on every notice and prints what changed.
// Useful for verifying that writes actually reach connected clients.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/avatarctic/live-catalog/pkg/catalog"
	"github.com/avatarctic/live-catalog/pkg/livefeed"
	"github.com/sirupsen/logrus"
)

func main() {
	server := flag.String("server", "http://localhost:4000", "base URL of the live-catalog server")
	altPorts := flag.String("alt-ports", "4001", "comma-separated alternate feed ports to probe")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	var ports []string
	for _, p := range strings.Split(*altPorts, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			ports = append(ports, trimmed)
		}
	}

	candidates := livefeed.Candidates(*server, ports...)
	if len(candidates) == 0 {
		logger.Fatalf("cannot derive feed endpoints from %q", *server)
	}

	feed := livefeed.New(candidates, livefeed.WithLogger(logger))
	defer feed.Close()

	client := catalog.New(*server, catalog.WithTokenSource(feed))

	fetch := func(reason string) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		items, err := client.List(ctx)
		if err != nil {
			logger.WithError(err).Error("failed to fetch products")
			return
		}
		logger.WithFields(logrus.Fields{"count": len(items), "reason": reason}).Info("catalog fetched")
		for _, p := range items {
			logger.Debugf("  %s  %-20s %8.2f %s  stock=%d", p.ID, p.Name, p.Price, p.Currency, p.Stock)
		}
	}

	feed.Subscribe(func(msg livefeed.Message) {
		fetch("invalidation notice")
	})

	if err := feed.Connect(); err != nil {
		logger.WithError(err).Fatal("no feed endpoint reachable")
	}
	logger.WithField("endpoint", feed.Endpoint()).Info("watching live catalog")

	fetch("startup")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}
