package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quasilyte/gdata"
	"golang.org/x/sync/errgroup"

	"github.com/automoto/doomerang-nav/config"
	"github.com/automoto/doomerang-nav/geometry"
	"github.com/automoto/doomerang-nav/levelgen"
	"github.com/automoto/doomerang-nav/navgraph"
	"github.com/automoto/doomerang-nav/pathfinding"
	"github.com/automoto/doomerang-nav/shared/gamemath"
	"github.com/automoto/doomerang-nav/shared/leveldata"
)

// level is one graph to build, with an optional default query.
type level struct {
	name     string
	shapes   []geometry.Shape
	from, to *gamemath.Vec2
}

type result struct {
	graph *navgraph.Graph
	hit   bool
	path  *pathfinding.Path
}

func main() {
	levelsDir := flag.String("levels", "", "Directory of TMX levels to build")
	generate := flag.Int("generate", 0, "Number of procedural layouts to build")
	seed := flag.Int64("seed", 1, "Seed of the first procedural layout")
	configPath := flag.String("config", "", "YAML navigation config (empty = defaults)")
	scale := flag.Float64("scale", 1.0/16, "World units per level pixel")
	from := flag.String("from", "", "Path query start as x,y (default: first spawn point)")
	to := flag.String("to", "", "Path query end as x,y (default: last spawn point)")
	useCache := flag.Bool("cache", false, "Load and store graph snapshots in the user data directory")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address and wait for a signal")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	queryFrom, err := parseVec(*from)
	if err != nil {
		log.Fatalf("Bad -from: %v", err)
	}
	queryTo, err := parseVec(*to)
	if err != nil {
		log.Fatalf("Bad -to: %v", err)
	}

	levels, err := collectLevels(*levelsDir, *generate, *seed, *scale)
	if err != nil {
		log.Fatalf("Failed to load levels: %v", err)
	}
	if len(levels) == 0 {
		log.Fatal("Nothing to build: pass -levels or -generate")
	}

	var cache *pathfinding.SnapshotCache
	if *useCache {
		m, err := gdata.Open(gdata.Config{AppName: "doomerang-nav"})
		if err != nil {
			log.Printf("Warning: snapshot cache disabled: %v", err)
		} else {
			cache = pathfinding.NewSnapshotCache(m)
		}
	}

	reg := prometheus.NewRegistry()
	results := make([]result, len(levels))

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.NumCPU())
	for i, lvl := range levels {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			opts := []pathfinding.Option{
				pathfinding.WithRegistry(prometheus.WrapRegistererWith(prometheus.Labels{"level": lvl.name}, reg)),
				pathfinding.WithLogger(slog.Default().With("level", lvl.name)),
			}
			if cache != nil {
				opts = append(opts, pathfinding.WithCache(cache))
			}
			pf, err := pathfinding.New(cfg.Pathfinder, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", lvl.name, err)
			}
			graph, hit, err := pf.BuildGraphCached(lvl.name, lvl.shapes, cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", lvl.name, err)
			}
			res := result{graph: graph, hit: hit}

			start, end := pick(queryFrom, lvl.from), pick(queryTo, lvl.to)
			if start != nil && end != nil {
				res.path = pf.RequestPath(*start, *end)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("Build failed: %v", err)
	}

	for i, lvl := range levels {
		report(lvl.name, results[i])
	}

	if *metricsAddr != "" {
		serveMetrics(*metricsAddr, reg)
	}
}

// collectLevels loads every TMX level in dir and appends n generated layouts.
func collectLevels(dir string, n int, seed int64, scale float64) ([]level, error) {
	var levels []level
	if dir != "" {
		data, names, err := leveldata.LoadAllLevels(os.DirFS(dir), ".")
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			d := data[name]
			mapHeight := float64(d.MapHeight)
			lvl := level{
				name:   name,
				shapes: geometry.FromSpace(geometry.NewSpace(d), scale, mapHeight),
			}
			if len(d.SpawnPoints) > 1 {
				first, last := d.SpawnPoints[0], d.SpawnPoints[len(d.SpawnPoints)-1]
				lvl.from = spawnToWorld(first, scale, mapHeight)
				lvl.to = spawnToWorld(last, scale, mapHeight)
			}
			levels = append(levels, lvl)
		}
	}
	for i := 0; i < n; i++ {
		s := seed + int64(i)
		levels = append(levels, level{
			name:   fmt.Sprintf("generated-%d", s),
			shapes: levelgen.Generate(s, levelgen.DefaultOptions()),
		})
	}
	return levels, nil
}

func spawnToWorld(sp leveldata.SpawnPoint, scale, mapHeight float64) *gamemath.Vec2 {
	x, y := geometry.ToWorld(sp.X, sp.Y, scale, mapHeight)
	v := gamemath.V(x, y)
	return &v
}

func pick(flagValue, fallback *gamemath.Vec2) *gamemath.Vec2 {
	if flagValue != nil {
		return flagValue
	}
	return fallback
}

func parseVec(s string) (*gamemath.Vec2, error) {
	if s == "" {
		return nil, nil
	}
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return nil, fmt.Errorf("%q is not x,y", s)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err := errors.Join(errX, errY); err != nil {
		return nil, fmt.Errorf("%q: %w", s, err)
	}
	v := gamemath.V(x, y)
	return &v, nil
}

func report(name string, res result) {
	st := res.graph.Stats()
	source := "built"
	if res.hit {
		source = "cached"
	}
	fmt.Printf("%s (%s): %d surfaces, %d nodes (%d edges), %d links [walk %d, jump %d, fall %d, drop %d], %d skipped\n",
		name, source, st.Surfaces, st.Nodes, st.EdgeNodes, st.Links,
		st.LinksPerKind[navgraph.LinkWalk], st.LinksPerKind[navgraph.LinkJump],
		st.LinksPerKind[navgraph.LinkFall], st.LinksPerKind[navgraph.LinkDropThrough],
		st.Skipped)

	p := res.path
	if p == nil {
		return
	}
	fmt.Printf("  path %v -> %v: %s", p.Start, p.End, p.Status)
	if p.Partial {
		fmt.Print(" (partial)")
	}
	fmt.Printf(", %d commands, %v\n", len(p.Commands), p.Duration)
	for i, c := range p.Commands {
		fmt.Printf("    %2d %-12s -> (%.2f, %.2f)", i, c.Kind, c.Target.X, c.Target.Y)
		if c.Kind == navgraph.LinkJump {
			fmt.Printf(" launch (%.2f, %.2f)", c.VX, c.VY)
		}
		fmt.Printf(" %.2fs\n", c.Duration)
	}
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Metrics server error: %v", err)
		}
	}()
	log.Printf("Serving metrics on %s/metrics", addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutting down metrics server...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("Metrics server shutdown error: %v", err)
	}
}
