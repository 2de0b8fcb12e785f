package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"pledge-insights/config"
	"pledge-insights/geocode"
	"pledge-insights/models"
	"pledge-insights/services"
	"pledge-insights/storage"
	"pledge-insights/utils"
)

const usage = `Usage: pledge-insights <command> [flags]

Commands:
  report   [-json] [-status s,..] [-cohort c,..] [-bin B]... [-zip z,..]
           [-min-age N] [-max-age N] FILE...
  export   [-out DIR] FILE...
  snapshot save -title T [-date YYYY-MM-DD] FILE
  snapshot load [-json] ID
  snapshot list
`

type app struct {
	cfg    *config.Config
	logger *utils.Logger
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := utils.NewLoggerWithOptions(os.Stderr, cfg.LogLevel, !cfg.IsProduction())
	if !cfg.EnvFileLoaded {
		logger.Debug("[config] No .env file found, using environment only")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, logger: logger}
	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "report":
		err = a.report(ctx, args)
	case "export":
		err = a.export(ctx, args)
	case "snapshot":
		err = a.snapshot(ctx, args)
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("%s failed: %v", cmd, err)
		os.Exit(1)
	}
}

// filterFlags holds the raw report filter flags. Bin labels contain commas,
// so -bin repeats instead of taking a list. Negative ages mean unset.
type filterFlags struct {
	statuses string
	cohorts  string
	bins     []string
	zips     string
	minAge   int
	maxAge   int
}

func (ff *filterFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&ff.statuses, "status", "", "comma-separated statuses to keep (renewed, current-only, prior-only, no-pledge-both)")
	fs.StringVar(&ff.cohorts, "cohort", "", "comma-separated cohorts to keep (\"Under 40\", 40-49, 50-64, 65+)")
	fs.Func("bin", "pledge bin to keep, repeatable (\"No pledge\", \"$1-$1,799\", ..., \"$5,400+\")", func(v string) error {
		ff.bins = append(ff.bins, v)
		return nil
	})
	fs.StringVar(&ff.zips, "zip", "", "comma-separated ZIP codes to keep")
	fs.IntVar(&ff.minAge, "min-age", -1, "lowest age to keep")
	fs.IntVar(&ff.maxAge, "max-age", -1, "highest age to keep, inclusive")
}

func (a *app) report(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "print the report as JSON")
	var ff filterFlags
	ff.register(fs)
	_ = fs.Parse(args)

	filter, err := parseFilter(ff)
	if err != nil {
		return err
	}

	datasets, err := a.loadAll(fs.Args())
	if err != nil {
		return err
	}

	svc := services.NewInsightService(a.logger.With("insights"))
	for _, ds := range datasets {
		records := services.FilterRecords(ds.Records, filter)
		if !filter.IsEmpty() {
			a.logger.Info("[report] %s: filter kept %d of %d households", ds.ID, len(records), len(ds.Records))
		}
		if err := a.present(ctx, svc, ds.ID, records, *asJSON); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	outDir := fs.String("out", a.cfg.ExportDir, "output directory")
	_ = fs.Parse(args)

	datasets, err := a.loadAll(fs.Args())
	if err != nil {
		return err
	}

	svc := services.NewInsightService(a.logger.With("insights"))
	for _, ds := range datasets {
		base := strings.TrimSuffix(ds.ID, filepath.Ext(ds.ID))

		csvPath := filepath.Join(*outDir, base+".enriched.csv")
		w, err := storage.NewCSVWriter(csvPath)
		if err != nil {
			return err
		}
		if err := w.Write(ds.Records); err != nil {
			_ = w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("csv: close %q: %w", csvPath, err)
		}

		report, err := svc.Generate(ctx, ds.Records)
		if err != nil {
			return err
		}
		report.Zips = a.resolveDistances(report.Zips)

		xlsxPath := filepath.Join(*outDir, base+".xlsx")
		if err := storage.NewXLSXExporter(xlsxPath).Export(ds.Records, report); err != nil {
			return err
		}
		a.logger.Info("[export] %s → %s, %s", ds.ID, csvPath, xlsxPath)
	}
	return nil
}

func (a *app) snapshot(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("snapshot needs a subcommand: save, load or list")
	}

	retry := utils.RetryConfig{MaxAttempts: a.cfg.MaxRetries, BaseDelay: a.cfg.RetryDelay, Logger: a.logger}
	store, err := storage.NewSnapshotStore(ctx, a.cfg.DSN(), retry, a.logger.With("postgres"))
	if err != nil {
		a.logger.Error("Make sure PostgreSQL is running: docker compose up -d")
		return err
	}
	defer store.Close()

	return a.runSnapshot(ctx, store, args[0], args[1:])
}

func (a *app) runSnapshot(ctx context.Context, repo storage.SnapshotRepository, sub string, args []string) error {
	switch sub {
	case "save":
		fs := flag.NewFlagSet("snapshot save", flag.ExitOnError)
		title := fs.String("title", "", "snapshot title")
		date := fs.String("date", time.Now().Format(time.DateOnly), "snapshot date (YYYY-MM-DD)")
		_ = fs.Parse(args)

		if fs.NArg() != 1 {
			return errors.New("snapshot save takes exactly one input file")
		}
		snapshotDate, err := time.Parse(time.DateOnly, *date)
		if err != nil {
			return fmt.Errorf("snapshot date: %w", err)
		}
		ds, err := a.load(fs.Arg(0))
		if err != nil {
			return err
		}
		if *title == "" {
			*title = ds.ID
		}

		snap := &models.Snapshot{Title: *title, SnapshotDate: snapshotDate, Records: ds.Raw}
		if err := repo.Save(ctx, snap); err != nil {
			return err
		}
		fmt.Printf("  Saved snapshot %s (%d households)\n", snap.ID, len(snap.Records))
		return nil

	case "load":
		fs := flag.NewFlagSet("snapshot load", flag.ExitOnError)
		asJSON := fs.Bool("json", false, "print the report as JSON")
		_ = fs.Parse(args)
		if fs.NArg() != 1 {
			return errors.New("snapshot load takes exactly one snapshot id")
		}

		snap, err := repo.Load(ctx, fs.Arg(0))
		if err != nil {
			return err
		}
		ds := services.FromSnapshot(snap)
		svc := services.NewInsightService(a.logger.With("insights"))
		return a.present(ctx, svc, snap.Title, ds.Records, *asJSON)

	case "list":
		snaps, err := repo.List(ctx)
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			fmt.Println("  No snapshots stored.")
			return nil
		}
		for _, s := range snaps {
			fmt.Printf("  %s  %s  %s\n", s.ID, s.SnapshotDate.Format(time.DateOnly), s.Title)
		}
		return nil

	default:
		return fmt.Errorf("unknown snapshot subcommand %q", sub)
	}
}

// loadAll reads and cleans every file on the worker pool. Results keep the
// order of paths.
func (a *app) loadAll(paths []string) ([]*services.Dataset, error) {
	if len(paths) == 0 {
		return nil, errors.New("no input files given")
	}

	datasets := make([]*services.Dataset, len(paths))
	errs := make([]error, len(paths))

	pool := utils.NewWorkerPool(a.cfg.MaxConcurrency, a.cfg.RateLimitMs)
	for i, path := range paths {
		pool.Submit(func() {
			datasets[i], errs[i] = a.load(path)
		})
	}
	pool.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return datasets, nil
}

// load reads one file and builds its dataset. The file name is the dataset
// id, so re-running on the same file yields the same keys.
func (a *app) load(path string) (*services.Dataset, error) {
	start := time.Now()
	rows, err := storage.ReaderFor(path, a.logger.With("storage")).Read(path)
	if err != nil {
		return nil, err
	}

	ds, err := services.NewCleaner(a.logger.With("cleaner")).BuildDataset(filepath.Base(path), rows)
	if err != nil {
		return nil, err
	}
	a.logger.Info("[load] %s: %d households, %d rejected (%v)",
		ds.ID, len(ds.Records), len(ds.Issues), time.Since(start).Round(time.Millisecond))
	return ds, nil
}

func (a *app) present(ctx context.Context, svc *services.InsightService, title string, records []models.EnrichedRecord, asJSON bool) error {
	report, err := svc.Generate(ctx, records)
	if err != nil {
		return err
	}
	report.Zips = a.resolveDistances(report.Zips)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Dataset string                `json:"dataset"`
			Report  *models.InsightReport `json:"report"`
		}{title, report})
	}

	fmt.Printf("\n  Dataset: %s\n", title)
	svc.Print(os.Stdout, report)
	a.printDistances(report.Zips)
	return nil
}

// resolveDistances fills in coordinates when a gazetteer and reference ZIP
// are configured; otherwise zips are returned unchanged.
func (a *app) resolveDistances(zips []models.ZipAggregate) []models.ZipAggregate {
	if len(zips) == 0 || a.cfg.GazetteerPath == "" || a.cfg.ReferenceZip == "" {
		return zips
	}
	g, err := geocode.LoadGazetteer(a.cfg.GazetteerPath)
	if err != nil {
		a.logger.Warn("[geocode] %v", err)
		return zips
	}
	resolved, err := g.Resolve(zips, a.cfg.ReferenceZip)
	if err != nil {
		a.logger.Warn("[geocode] %v", err)
		return zips
	}
	return resolved
}

func (a *app) printDistances(zips []models.ZipAggregate) {
	resolved := false
	for _, z := range zips {
		if z.DistanceMiles != nil {
			resolved = true
			break
		}
	}
	if !resolved {
		return
	}
	households := services.DistanceHistogram(zips, a.cfg.DistanceBins, services.MetricHouseholds)
	dollars := services.DistanceHistogram(zips, a.cfg.DistanceBins, services.MetricTotalCurrent)
	fmt.Printf("  Distance from %s\n", a.cfg.ReferenceZip)
	for i, b := range households {
		fmt.Printf("  %-10s %4.0f hh  %s\n", b.Label, b.Value, services.FormatCurrency(dollars[i].Value))
	}
	fmt.Println()
}

func parseFilter(ff filterFlags) (services.Filter, error) {
	var f services.Filter
	for _, label := range splitList(ff.statuses) {
		s, ok := models.ParseStatus(label)
		if !ok {
			return f, fmt.Errorf("unknown status %q", label)
		}
		f.Statuses = append(f.Statuses, s)
	}
	for _, label := range splitList(ff.cohorts) {
		c, ok := models.ParseCohort(label)
		if !ok {
			return f, fmt.Errorf("unknown cohort %q", label)
		}
		f.Cohorts = append(f.Cohorts, c)
	}
	for _, label := range ff.bins {
		b, ok := models.ParseBin(strings.TrimSpace(label))
		if !ok {
			return f, fmt.Errorf("unknown pledge bin %q", label)
		}
		f.Bins = append(f.Bins, b)
	}
	f.Zips = splitList(ff.zips)

	if ff.minAge >= 0 {
		f.MinAge = &ff.minAge
	}
	if ff.maxAge >= 0 {
		f.MaxAge = &ff.maxAge
	}
	if f.MinAge != nil && f.MaxAge != nil && *f.MinAge > *f.MaxAge {
		return f, fmt.Errorf("-min-age %d is above -max-age %d", ff.minAge, ff.maxAge)
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
