package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/OCharnyshevich/fortress-finder/internal/config"
	"github.com/OCharnyshevich/fortress-finder/internal/finder"
	"github.com/OCharnyshevich/fortress-finder/internal/seeds"
	"github.com/OCharnyshevich/fortress-finder/internal/storage"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.DefaultConfig()
	var configPath, showPath string

	fs := flag.NewFlagSet("fortressfinder", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Func("seed", "world seed (int64)", func(s string) error {
		v, err := seeds.FromString(s)
		if err != nil {
			return err
		}
		cfg.Seed = v
		return nil
	})
	fs.Func("center", "search center X,Z in nether blocks (default 0,0)", func(s string) error {
		x, z, err := config.ParsePair(s)
		if err != nil {
			return err
		}
		cfg.CenterX, cfg.CenterZ = x, z
		return nil
	})
	fs.IntVar(&cfg.Radius, "radius", cfg.Radius, "search radius in blocks")
	fs.StringVar(&cfg.Analyze, "analyze", "", "analyze the fortress anchored at chunk X,Z")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent cells (0 = GOMAXPROCS)")
	fs.StringVar(&configPath, "config", "", "YAML or JSON config file")
	fs.StringVar(&cfg.SeedsFrom, "seeds-from", "", "search every seed listed at this go-getter source")
	fs.StringVar(&cfg.Report, "report", "", "write a JSON report to this path")
	fs.StringVar(&cfg.Export, "export", "", "write matches as zstd-compressed JSON lines to this path")
	fs.StringVar(&cfg.Index, "index", "", "record the run in this SQLite index")
	fs.StringVar(&showPath, "show", "", "print a saved report (.json) or export (.zst) and exit")
	fs.BoolVar(&cfg.Verbose, "v", false, "debug logging")
	fs.Usage = func() { usage(fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if showPath != "" {
		if err := show(stdout, showPath); err != nil {
			fmt.Fprintln(stderr, err)
			return exitFailure
		}
		return exitOK
	}

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	if fs.NArg() > 1 {
		fmt.Fprintln(stderr, "too many arguments")
		fs.Usage()
		return exitUsage
	}
	if fs.NArg() == 1 {
		if explicit["seed"] {
			fmt.Fprintln(stderr, "seed given both as flag and argument")
			return exitUsage
		}
		v, err := seeds.FromString(fs.Arg(0))
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitUsage
		}
		cfg.Seed = v
		explicit["seed"] = true
	}

	if configPath != "" {
		fromFile, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitUsage
		}
		config.Merge(cfg, fromFile, explicit)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	f, err := finder.New(finder.Options{Placement: cfg.Placement, Workers: cfg.Workers}, log)
	if err != nil {
		log.Error("create finder", "error", err)
		return exitUsage
	}

	report := storage.NewReport(storage.NewRunID())

	switch {
	case cfg.Analyze != "":
		chunk, err := cfg.AnalyzeChunk()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitUsage
		}
		a, err := f.Analyze(ctx, cfg.Seed, chunk)
		if err != nil {
			return fail(log, stderr, "analyze", err)
		}
		printAnalysis(stdout, a)
		report.Analysis = a
		report.Results = append(report.Results, a.Result())

	case cfg.SeedsFrom != "":
		list, err := seeds.Fetch(ctx, cfg.SeedsFrom)
		if err != nil {
			return fail(log, stderr, "load seeds", err)
		}
		log.Info("seed list loaded", "source", cfg.SeedsFrom, "seeds", len(list))
		results, err := f.SearchSeeds(ctx, list, searchRequest(cfg))
		for _, res := range results {
			printResult(stdout, res)
		}
		report.Results = append(report.Results, results...)
		if err != nil {
			return fail(log, stderr, "search", err)
		}
		printSummary(stdout, results)

	default:
		res, err := f.Search(ctx, searchRequest(cfg))
		if err != nil {
			return fail(log, stderr, "search", err)
		}
		printResult(stdout, res)
		report.Results = append(report.Results, res)
	}

	if err := persist(ctx, stdout, cfg, report, log); err != nil {
		log.Error("save results", "error", err)
		return exitFailure
	}
	return exitOK
}

func searchRequest(cfg *config.Config) finder.Request {
	return finder.Request{Seed: cfg.Seed, CenterX: cfg.CenterX, CenterZ: cfg.CenterZ, Radius: cfg.Radius}
}

// persist writes the optional report, export and index outputs. Export
// lines and index rows for Results[i] carry the same run ID.
func persist(ctx context.Context, stdout io.Writer, cfg *config.Config, report *storage.Report, log *slog.Logger) error {
	if cfg.Report != "" {
		if err := storage.WriteReport(cfg.Report, report); err != nil {
			return err
		}
		log.Info("report written", "path", cfg.Report, "run", report.RunID)
	}

	if cfg.Export != "" {
		w, err := storage.NewExportWriter(cfg.Export)
		if err != nil {
			return err
		}
		for i, res := range report.Results {
			if err := w.WriteResult(report.ResultRunID(i), res); err != nil {
				w.Close()
				return err
			}
		}
		if err := w.Close(); err != nil {
			return err
		}
		log.Info("matches exported", "path", cfg.Export, "count", w.Count())
	}

	if cfg.Index != "" {
		idx, err := storage.OpenIndex(cfg.Index)
		if err != nil {
			return err
		}
		defer idx.Close()
		var seen []int64
		for i, res := range report.Results {
			if err := idx.RecordRun(ctx, report.ResultRunID(i), res); err != nil {
				return err
			}
			if !slices.Contains(seen, res.Seed) {
				seen = append(seen, res.Seed)
			}
		}
		log.Info("run indexed", "path", cfg.Index, "runs", len(report.Results))

		for _, seed := range seen {
			runs, err := idx.Runs(ctx, seed)
			if err != nil {
				return err
			}
			matches, err := idx.MatchesForSeed(ctx, seed)
			if err != nil {
				return err
			}
			printIndexHistory(stdout, seed, runs, matches)
		}
	}
	return nil
}

// show prints a file written by -report or -export.
func show(w io.Writer, path string) error {
	if strings.HasSuffix(path, ".zst") {
		recs, err := storage.ReadExport(path)
		if err != nil {
			return err
		}
		printExport(w, recs)
		return nil
	}

	r, err := storage.ReadReport(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Run %s, generated %s\n", r.RunID, r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if r.Analysis != nil {
		printAnalysis(w, r.Analysis)
		return nil
	}
	for _, res := range r.Results {
		printResult(w, res)
	}
	return nil
}

// fail logs err and maps it to an exit code.
func fail(log *slog.Logger, stderr io.Writer, op string, err error) int {
	switch {
	case errors.Is(err, finder.ErrInvalidRequest), errors.Is(err, seeds.ErrEmpty), errors.Is(err, seeds.ErrInvalidSeed):
		fmt.Fprintln(stderr, err)
		return exitUsage
	case errors.Is(err, context.Canceled):
		log.Warn(op+" interrupted", "error", err)
		return exitFailure
	}
	log.Error(op, "error", err)
	return exitFailure
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintf(out, "Usage: %s [flags] [seed]\n\n", fs.Name())
	fmt.Fprintln(out, "Finds nether fortresses containing a 2x2 group of bridge crossings.")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Examples:")
	fmt.Fprintln(out, "  fortressfinder 12345")
	fmt.Fprintln(out, "  fortressfinder -radius 2000 -center 1000,500 12345")
	fmt.Fprintln(out, "  fortressfinder -analyze -309,-144 12345")
	fmt.Fprintln(out, "  fortressfinder -seeds-from https://example.com/seeds.txt -report out/report.json")
	fmt.Fprintln(out, "  fortressfinder -show out/report.json")
	fmt.Fprintln(out)
	fs.PrintDefaults()
}
