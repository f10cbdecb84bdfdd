// Command terraind streams terrain chunks around a scripted reference path,
// optionally recording events and serving them to websocket clients.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"mini-terrain/internal/config"
	"mini-terrain/internal/eventlog"
	"mini-terrain/internal/profiling"
	"mini-terrain/internal/streaming"
	"mini-terrain/internal/transport/ws"
)

func main() {
	var (
		configPath = flag.String("config", "", "terrain config file (YAML); empty uses built-in defaults")
		fetchSrc   = flag.String("fetch", "", "go-getter source to download the config from")
		ticks      = flag.Int("ticks", 64, "number of ticks to run")
		pathKind   = flag.String("path", "line", "reference path: still, line or circle")
		step       = flag.Float64("step", 2, "world units the reference moves per tick")
		radius     = flag.Float64("radius", 64, "circle path radius")
		height     = flag.Float64("y", 0, "reference height")
		interval   = flag.Duration("interval", 0, "delay between ticks")
		eventsOut  = flag.String("events", "", "write a zstd JSONL event log to this file")
		listen     = flag.String("listen", "", "serve chunk events over websocket on this address, e.g. 127.0.0.1:8090")
		dump       = flag.String("dump", "", "print a summary of an event log and exit")
	)
	flag.Parse()

	if *dump != "" {
		if err := dumpLog(*dump); err != nil {
			log.Fatal(err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Resolve(ctx, *configPath, *fetchSrc)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	path, err := newPath(*pathKind, mgl32.Vec3{0, float32(*height), 0}, *step, *radius)
	if err != nil {
		log.Fatal(err)
	}

	var listeners streaming.Multi
	var recorder *eventlog.Writer
	if *eventsOut != "" {
		if recorder, err = eventlog.Create(*eventsOut); err != nil {
			log.Fatalf("event log: %v", err)
		}
		listeners = append(listeners, recorder)
	}
	var hub *ws.Hub
	var srv *http.Server
	if *listen != "" {
		hub = ws.NewHub(cfg.VoxelScale*float64(cfg.PointsPerChunk), log.Default())
		listeners = append(listeners, hub)
		mux := http.NewServeMux()
		mux.Handle("/v1/chunks", hub.Handler())
		srv = &http.Server{Addr: *listen, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("websocket server: %v", err)
				stop()
			}
		}()
		log.Printf("serving chunk events on ws://%s/v1/chunks", *listen)
	}

	mgr, err := cfg.NewManager(listeners, log.Default())
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("chunk size %g, view radius %d, evict radius %g, workers %d",
		mgr.ChunkSize(), mgr.ViewRadius(), mgr.EvictRadius(), cfg.Workers)

	runErr := run(ctx, mgr, path, *ticks, *interval, recorder)
	mgr.Close()

	if srv != nil && runErr == nil {
		log.Printf("ticks done; still serving %d chunks, interrupt to exit", len(hub.Ready()))
		<-ctx.Done()
	}
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		hub.Close()
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}
	if recorder != nil {
		if err := recorder.Close(); err != nil {
			log.Printf("event log: %v", err)
		}
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Fatal(runErr)
	}
}

func run(ctx context.Context, mgr *streaming.Manager, path pathFunc, ticks int, interval time.Duration, recorder *eventlog.Writer) error {
	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		profiling.ResetTick()
		ref := path(i)
		start := time.Now()
		stats, err := mgr.Tick(ref)
		if err != nil {
			return fmt.Errorf("tick %d: %w", i, err)
		}
		if recorder != nil {
			recorder.WriteTick(stats)
		}
		if stats.Changed() {
			log.Printf("tick %d ref %v base %v: +%d -%d active %d in %s [%s]",
				i, ref, stats.Base, stats.Created, stats.Evicted, mgr.Len(),
				time.Since(start).Round(time.Microsecond), profiling.TopN(3))
		}
		if interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
	}
	if recorder != nil {
		return recorder.Err()
	}
	return nil
}

func dumpLog(path string) error {
	records, err := eventlog.ReadFile(path)
	if err != nil {
		return err
	}
	var ticks, ready, removed, triangles int
	for _, r := range records {
		switch r.Type {
		case eventlog.TypeTick:
			ticks++
		case eventlog.TypeReady:
			ready++
			triangles += r.Triangles
		case eventlog.TypeRemoved:
			removed++
		}
	}
	fmt.Printf("%s: %d records, %d ticks, %d chunks ready (%d triangles), %d removed\n",
		path, len(records), ticks, ready, triangles, removed)
	return nil
}
