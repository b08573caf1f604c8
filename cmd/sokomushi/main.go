package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/seijaku-code/soko-mushi/internal/config"
	"github.com/seijaku-code/soko-mushi/internal/drives"
	"github.com/seijaku-code/soko-mushi/internal/model"
	"github.com/seijaku-code/soko-mushi/internal/report"
	"github.com/seijaku-code/soko-mushi/internal/scanner"
	"github.com/seijaku-code/soko-mushi/internal/stats"
	"github.com/seijaku-code/soko-mushi/internal/util"
)

var version = "dev"

type cliOptions struct {
	jsonPath    string
	csvPrefix   string
	ncduPath    string
	importPath  string
	configPath  string
	exclude     []string
	minSizeStr  string
	topN        int
	jobs        int
	noHidden    bool
	followLinks bool
	listDrives  bool
	debug       bool
	showVersion bool
}

func usage() {
	fmt.Fprint(os.Stderr, heredoc.Doc(`
		sokomushi - local disk usage analyzer

		Scans a directory tree, aggregates sizes bottom-up and reports the
		largest items and per-extension statistics. Scans are cancellable
		with Ctrl-C and always yield a consistent (possibly partial) result.

		Usage:

		    sokomushi [flags] [path]

		Examples:

		    sokomushi /home              Scan /home and print a summary
		    sokomushi --json report.json .   Write the full JSON report
		    sokomushi --csv out .        Write out-files/types/largest.csv
		    sokomushi --ncdu scan.json . Export in ncdu-compatible format
		    sokomushi --import scan.json Summarize a previous export
		    sokomushi --drives           List mounted volumes

		Flags:
	`))
	pflag.PrintDefaults()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var o cliOptions

	pflag.StringVar(&o.jsonPath, "json", "", "Write full JSON report to file ('-' for stdout)")
	pflag.StringVar(&o.csvPrefix, "csv", "", "Write <prefix>-files.csv, <prefix>-types.csv and <prefix>-largest.csv")
	pflag.StringVar(&o.ncduPath, "ncdu", "", "Write ncdu-compatible export to file ('-' for stdout)")
	pflag.StringVar(&o.importPath, "import", "", "Load a previous ncdu-compatible export instead of scanning")
	pflag.StringVar(&o.configPath, "config", "", "Config file (default: ./"+config.FileName+", then ~/.config/sokomushi/)")
	pflag.StringSliceVarP(&o.exclude, "exclude", "e", nil, "Entry names to skip (repeatable or comma-separated)")
	pflag.StringVar(&o.minSizeStr, "min-size", "", "Skip files smaller than this (e.g. 10KB, 1MiB)")
	pflag.IntVarP(&o.topN, "top", "t", 0, "Number of largest items to show (default 10)")
	pflag.IntVarP(&o.jobs, "jobs", "j", 0, "Max concurrent directory scans (0 = auto: 3x CPU cores)")
	pflag.BoolVar(&o.noHidden, "no-hidden", false, "Skip hidden files and directories")
	pflag.BoolVar(&o.followLinks, "follow-symlinks", false, "Follow symbolic links during scan")
	pflag.BoolVar(&o.listDrives, "drives", false, "List mounted volumes and exit")
	pflag.BoolVar(&o.debug, "debug", false, "Enable debug logging")
	pflag.BoolVarP(&o.showVersion, "version", "v", false, "Show version and exit")

	pflag.CommandLine.SortFlags = false
	pflag.Usage = usage
	pflag.Parse()

	configureLogging(o.debug)

	if o.showVersion {
		fmt.Printf("sokomushi %s\n", version)
		return nil
	}
	if o.listDrives {
		return printDrives()
	}

	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return err
	}

	opts, topN, err := mergeOptions(cfg, &o)
	if err != nil {
		return err
	}

	if o.importPath != "" {
		if pflag.NArg() > 0 {
			return fmt.Errorf("--import cannot be combined with a scan path")
		}
		return runImport(o.importPath, &o, topN)
	}

	path := "."
	if pflag.NArg() > 0 {
		if pflag.NArg() > 1 {
			return fmt.Errorf("too many positional arguments")
		}
		path = pflag.Arg(0)
	}

	return runScan(path, opts, &o, topN)
}

func configureLogging(debug bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	if debug {
		log.SetLevel(log.DebugLevel)
		log.Debug("debug logging enabled")
	} else {
		log.SetLevel(log.WarnLevel)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}

// mergeOptions layers CLI flags over the config file.
func mergeOptions(cfg *config.Config, o *cliOptions) (scanner.Options, int, error) {
	opts := cfg.ScanOptions()

	if o.jobs < 0 {
		return opts, 0, fmt.Errorf("jobs (-j) must be >= 0")
	}
	if o.jobs > 0 {
		opts.Concurrency = o.jobs
	}
	if o.noHidden {
		opts.ShowHidden = false
	}
	if o.followLinks {
		opts.FollowSymlinks = true
	}
	opts.ExcludePatterns = append(opts.ExcludePatterns, o.exclude...)

	if o.minSizeStr != "" {
		n, err := humanize.ParseBytes(o.minSizeStr)
		if err != nil {
			return opts, 0, fmt.Errorf("invalid min-size: %w", err)
		}
		opts.MinSize = int64(n)
	}

	topN := cfg.TopN
	if o.topN > 0 {
		topN = o.topN
	}
	if topN <= 0 {
		topN = 10
	}
	return opts, topN, nil
}

func runScan(path string, opts scanner.Options, o *cliOptions, topN int) error {
	engine := scanner.NewEngine()
	scan, err := engine.Start(path, opts)
	if err != nil {
		return err
	}

	// Ctrl-C turns into cooperative cancellation: the scan still yields
	// a consistent partial result.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\ncancelling...")
			scan.Cancel()
		case <-scan.Done():
		}
	}()

	showProgress := isatty.IsTerminal(os.Stderr.Fd()) && !o.debug
	var progressWg sync.WaitGroup
	progressWg.Add(1)
	go func() {
		defer progressWg.Done()
		for p := range scan.Progress() {
			if !showProgress || p.Done {
				continue
			}
			fmt.Fprintf(os.Stderr, "\r\033[2KScanning %s: %s files, %s... ",
				util.TruncateString(p.CurrentPath, 50),
				util.FormatCount(p.FilesDone),
				humanize.IBytes(uint64(p.BytesDone)))
		}
		if showProgress {
			fmt.Fprint(os.Stderr, "\r\033[2K")
		}
	}()

	res := scan.Wait()
	progressWg.Wait()

	if res.Status == scanner.StatusFailed {
		return fmt.Errorf("scan failed: %w", res.Err)
	}

	printSummary(os.Stdout, scan.Root(), res, topN)
	return writeOutputs(res.Root, o, topN)
}

func runImport(path string, o *cliOptions, topN int) error {
	root, err := report.ImportNcdu(path)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %s\n\n", path)
	fmt.Printf("  Root:        %s\n", root.Name)
	fmt.Printf("  Total size:  %s (%d bytes)\n", util.FormatSize(root.Size), root.Size)
	fmt.Printf("  Total files: %s\n", util.FormatCount(root.FileCount))
	printTopTables(os.Stdout, root, topN)

	return writeOutputs(root, o, topN)
}

func printSummary(out *os.File, rootPath string, res *scanner.Result, topN int) {
	fmt.Fprintf(out, "Scan of %s: %s\n\n", rootPath, res.Status)
	fmt.Fprintf(out, "  Total size:  %s (%d bytes)\n", util.FormatSize(res.TotalSize), res.TotalSize)
	fmt.Fprintf(out, "  Files:       %s\n", util.FormatCount(res.TotalFiles))
	fmt.Fprintf(out, "  Directories: %s\n", util.FormatCount(res.TotalDirs))
	if res.Unreadable > 0 {
		fmt.Fprintf(out, "  Unreadable:  %d entries (totals are best-effort)\n", res.Unreadable)
	}
	fmt.Fprintf(out, "  Elapsed:     %s\n", res.Elapsed.Round(time.Millisecond))

	printTopTables(out, res.Root, topN)
}

func printTopTables(out *os.File, root *model.DirNode, topN int) {
	largest := stats.Largest(root, topN, stats.FilesOnly)
	if len(largest) > 0 {
		fmt.Fprintf(out, "\nLargest files:\n")
		for i, e := range largest {
			fmt.Fprintf(out, "  %2d. %10s  %s\n", i+1, util.FormatSize(e.Size), e.Path)
		}
	}

	extStats := stats.Extensions(root)
	keys := stats.SortedExtensions(extStats)
	if len(keys) > topN {
		keys = keys[:topN]
	}
	if len(keys) > 0 {
		fmt.Fprintf(out, "\nBy file type:\n")
		for _, ext := range keys {
			s := extStats[ext]
			fmt.Fprintf(out, "  %-12s %6s files  %10s  (%.1f%%)\n",
				ext, util.FormatCount(s.Count), util.FormatSize(s.Size),
				util.Percent(s.Size, root.Size))
		}
	}
}

func writeOutputs(root *model.DirNode, o *cliOptions, topN int) error {
	now := time.Now()

	if o.jsonPath != "" {
		if err := report.WriteJSON(root, now, o.jsonPath); err != nil {
			return fmt.Errorf("writing JSON report: %w", err)
		}
		logWritten(o.jsonPath)
	}
	if o.csvPrefix != "" {
		for _, out := range []struct {
			path  string
			write func(string) error
		}{
			{o.csvPrefix + "-files.csv", func(p string) error { return report.WriteFileListCSV(root, p) }},
			{o.csvPrefix + "-types.csv", func(p string) error { return report.WriteTypeStatsCSV(root, p) }},
			{o.csvPrefix + "-largest.csv", func(p string) error { return report.WriteLargestCSV(root, topN, p) }},
		} {
			if err := out.write(out.path); err != nil {
				return fmt.Errorf("writing %s: %w", out.path, err)
			}
			logWritten(out.path)
		}
	}
	if o.ncduPath != "" {
		if err := report.ExportNcdu(root, o.ncduPath, version); err != nil {
			return fmt.Errorf("writing ncdu export: %w", err)
		}
		logWritten(o.ncduPath)
	}
	return nil
}

func logWritten(path string) {
	if path != "-" {
		fmt.Printf("Wrote %s\n", path)
	}
}

func printDrives() error {
	volumes, err := drives.List()
	if err != nil {
		return err
	}

	sort.Slice(volumes, func(i, j int) bool { return volumes[i].Path < volumes[j].Path })

	fmt.Printf("%-30s %-10s %12s %12s\n", "MOUNT", "FS", "TOTAL", "FREE")
	for _, v := range volumes {
		if v.Err != nil {
			fmt.Printf("%-30s %-10s %25s\n", v.Path, v.Filesystem, "error: "+strings.TrimSpace(v.Err.Error()))
			continue
		}
		fmt.Printf("%-30s %-10s %12s %12s\n",
			v.Path, v.Filesystem,
			util.FormatSize(int64(v.Total)),
			util.FormatSize(int64(v.Free)))
	}
	return nil
}
