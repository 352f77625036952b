// Spins up the loquat cache server, compatible w/ the Redis protocol.

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/lunardb/loquat/pkg/cache"
	"github.com/lunardb/loquat/pkg/config"
	"github.com/lunardb/loquat/pkg/port"
	"github.com/lunardb/loquat/pkg/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	printVersion   = flag.Bool("print_version", false, "Print the version and exit.")
	metricsAddress = flag.String("metrics_address", "0.0.0.0:9090",
		"The ip:port to serve Prometheus metrics on; empty disables the endpoint.")
	cacheCapacity = flag.Int("cache_capacity", cache.DefaultCapacity, "Maximum number of entries per cache shard.")
	cacheExpiry   = flag.Duration("cache_expiry", cache.DefaultWindow, "Per-entry expiration window.")
	cacheSliding  = flag.Bool("cache_sliding_expiry", true, "Extend an entry's deadline on every successful read.")
	cachePoll     = flag.Duration("cache_poll_interval", cache.DefaultPollInterval,
		"Reaper tick; zero disables background sweeps.")
	cacheShards = flag.Int("cache_shards", 1, "Number of cache shards; more shards spread lock contention.")
)

func main() {
	config.InitFlags()
	utils.InitLogging()

	if *printVersion {
		slog.Info("Loquat build info.", "version", utils.Version, "commit", utils.Commit, "build", utils.BuildTime)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, os.Kill)

	go func() { // Listen for OS interrupts in the background.
		sig := <-signals
		slog.Info("Received termination signal, cancelling server context.", "signal", sig)
		cancel()
	}()

	if *metricsAddress != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsAddress, mux); err != nil {
				slog.Error("Metrics endpoint stopped.", "error", err)
			}
		}()
	}

	if err := port.RunServer(ctx, newStore()); err != nil {
		slog.Error("Loquat server stopped.", "err", err)
		os.Exit(1)
	}
}

// newStore builds the cache the port serves: a single map, or an
// xxhash-routed fan-out when sharding is requested.
func newStore() cache.Layer[string, []byte] {
	newShard := func() cache.Layer[string, []byte] {
		return cache.New(
			cache.WithCapacity[string, []byte](*cacheCapacity),
			cache.WithWindow[string, []byte](*cacheExpiry),
			cache.WithSlidingExpiration[string, []byte](*cacheSliding),
			cache.WithPollInterval[string, []byte](*cachePoll),
		)
	}
	if *cacheShards > 1 {
		return cache.NewSharded(newShard, *cacheShards)
	}
	return newShard()
}
