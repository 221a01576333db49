package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/johns/seqsplit/internal/config"
	"github.com/johns/seqsplit/internal/copyfiles"
	"github.com/johns/seqsplit/internal/dirmap"
	"github.com/johns/seqsplit/internal/discover"
	"github.com/johns/seqsplit/internal/index"
	"github.com/johns/seqsplit/internal/split"
	"github.com/johns/seqsplit/internal/squash"
	"github.com/johns/seqsplit/internal/watch"
	"github.com/johns/seqsplit/internal/ziplist"
)

var log = zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
	w.Out = os.Stderr
})).With().Timestamp().Logger()

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "split":
		cmdSplit(ctx, cfg, os.Args[2:])

	case "watch":
		cmdWatch(ctx, cfg, os.Args[2:])

	case "find":
		cmdFind(os.Args[2:])

	case "copy":
		cmdCopy(os.Args[2:])

	case "dirmap":
		cmdDirmap(os.Args[2:])

	case "zip-list":
		cmdZipList(os.Args[2:])

	case "compress":
		if len(os.Args) < 3 {
			fatal("usage: seqsplit compress <file>")
		}
		dst, err := squash.Compress(os.Args[2])
		if err != nil {
			fatal("compress: %v", err)
		}
		fmt.Printf("compressed: %s\n", dst)

	case "decompress":
		if len(os.Args) < 3 {
			fatal("usage: seqsplit decompress <file.zst>")
		}
		dst, err := squash.Decompress(os.Args[2])
		if err != nil {
			fatal("decompress: %v", err)
		}
		fmt.Printf("restored: %s\n", dst)

	case "runs":
		cmdRuns(cfg, os.Args[2:])

	case "version":
		fmt.Printf("seqsplit v%s\n", split.Version)

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func cmdSplit(ctx context.Context, cfg config.Config, args []string) {
	fs := flag.NewFlagSet("split", flag.ExitOnError)
	in := fs.String("in", "", "input file to split")
	out := fs.String("out", "", "output file prefix")
	max := fs.Int("max", cfg.MaxItems, "maximum items per output file")
	prefixes := fs.String("prefixes", strings.Join(cfg.FieldPrefixes, ","), "comma-separated expected field prefixes")
	sep := fs.String("sep", cfg.Separator, "separator joining stripped field values")
	fs.Parse(args)

	if *in == "" || *out == "" {
		fatal("usage: seqsplit split -in <file> -out <prefix> [-max N] [-prefixes a:,b:] [-sep S]")
	}

	opts := split.Options{
		MaxItems:      *max,
		FieldPrefixes: splitList(*prefixes),
		Separator:     *sep,
	}

	started := time.Now()
	res, err := split.File(ctx, *in, *out, opts)
	if err != nil {
		fatal("split: %v", err)
	}
	recordRun(cfg, index.Run{
		Input:    *in,
		Prefix:   *out,
		MaxItems: opts.MaxItems,
		Lines:    res.Lines,
		Segments: res.Segments,
		Started:  started,
		Finished: time.Now(),
	})

	fmt.Printf("split %s: %d lines into %d files (prefix %s)\n", *in, res.Lines, res.Segments, *out)
}

func cmdWatch(ctx context.Context, cfg config.Config, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	dir := fs.String("dir", cfg.Watch.Dir, "spool directory to watch")
	pattern := fs.String("pattern", cfg.Watch.Pattern, "wildcard for input file names")
	outDir := fs.String("out", cfg.Watch.OutDir, "directory for output files")
	max := fs.Int("max", cfg.MaxItems, "maximum items per output file")
	prefixes := fs.String("prefixes", strings.Join(cfg.FieldPrefixes, ","), "comma-separated expected field prefixes")
	sep := fs.String("sep", cfg.Separator, "separator joining stripped field values")
	fs.Parse(args)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fatal("create output dir: %v", err)
	}

	opts := split.Options{
		MaxItems:      *max,
		FieldPrefixes: splitList(*prefixes),
		Separator:     *sep,
	}

	handle := func(path string) error {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		prefix := filepath.Join(*outDir, base)

		started := time.Now()
		res, err := split.File(ctx, path, prefix, opts)
		if err != nil {
			return err
		}
		recordRun(cfg, index.Run{
			Input:    path,
			Prefix:   prefix,
			MaxItems: opts.MaxItems,
			Lines:    res.Lines,
			Segments: res.Segments,
			Started:  started,
			Finished: time.Now(),
		})
		log.Info().Str("input", path).Int("segments", res.Segments).Msg("split complete")
		return nil
	}

	if err := watch.Watch(ctx, *dir, *pattern, handle, log); err != nil {
		fatal("watch: %v", err)
	}
}

func cmdFind(args []string) {
	fs := flag.NewFlagSet("find", flag.ExitOnError)
	root := fs.String("root", ".", "top directory to search")
	pattern := fs.String("pattern", "", "wildcard for file names")
	dirs := fs.Bool("dirs", false, "list directories containing a match instead of files")
	fs.Parse(args)

	if *pattern == "" {
		fatal("usage: seqsplit find -root <dir> -pattern <wildcard> [-dirs]")
	}

	walk := discover.WalkFiles
	if *dirs {
		walk = discover.WalkDirs
	}
	err := walk(*root, *pattern, func(path string) error {
		fmt.Println(path)
		return nil
	})
	if err != nil {
		fatal("find: %v", err)
	}
}

func cmdCopy(args []string) {
	fs := flag.NewFlagSet("copy", flag.ExitOnError)
	mode := fs.String("mode", "suffix", "copy mode: suffix or query")
	in := fs.String("in", "", "input directory (suffix mode)")
	out := fs.String("out", "", "output directory")
	suffixes := fs.String("suffixes", "", "colon-separated name suffixes (suffix mode)")
	list := fs.String("list", "", "query list file (query mode)")
	top := fs.String("top", "", "top directory to search (query mode)")
	prefix := fs.String("prefix", "", "literal pattern prefix (query mode)")
	suffix := fs.String("suffix", "", "literal pattern suffix (query mode)")
	fs.Parse(args)

	if *out == "" {
		fatal("copy: -out is required")
	}

	switch *mode {
	case "suffix":
		if *in == "" || *suffixes == "" {
			fatal("usage: seqsplit copy -mode suffix -in <dir> -out <dir> -suffixes .a:.b")
		}
		n, err := copyfiles.BySuffix(*in, strings.Split(*suffixes, ":"), *out)
		if err != nil {
			fatal("copy: %v", err)
		}
		fmt.Printf("copied %d files to %s\n", n, *out)

	case "query":
		if *list == "" || *top == "" {
			fatal("usage: seqsplit copy -mode query -list <file> -top <dir> -out <dir> [-prefix P] [-suffix S]")
		}
		queries, err := copyfiles.ReadList(*list)
		if err != nil {
			fatal("copy: %v", err)
		}
		n, misses, err := copyfiles.ByQuery(queries, *top, *out, copyfiles.Formatter(*prefix, *suffix))
		if err != nil {
			fatal("copy: %v", err)
		}
		for _, q := range misses {
			log.Warn().Str("query", q).Msg("no files matched")
		}
		fmt.Printf("copied %d files to %s (%d queries unmatched)\n", n, *out, len(misses))

	default:
		fatal("copy: unknown mode %q", *mode)
	}
}

func cmdDirmap(args []string) {
	fs := flag.NewFlagSet("dirmap", flag.ExitOnError)
	top := fs.String("top", ".", "top directory to scan")
	pattern := fs.String("pattern", "", "wildcard marking target directories")
	out := fs.String("out", ".", "directory for the saved map")
	desc := fs.String("desc", "dataset", "map description used in file names")
	fs.Parse(args)

	if *pattern == "" {
		fatal("usage: seqsplit dirmap -top <dir> -pattern <wildcard> -out <dir> [-desc NAME]")
	}

	info := func(absDir string) ([]string, error) {
		matches, err := discover.Files(absDir, *pattern)
		if err != nil {
			return nil, err
		}
		return []string{filepath.Base(absDir), fmt.Sprint(len(matches))}, nil
	}

	m, err := dirmap.Build(*top, *pattern, []string{"name", "matches"}, info, *desc)
	if err != nil {
		fatal("dirmap: %v", err)
	}
	if err := m.Save(*out); err != nil {
		fatal("dirmap: %v", err)
	}
	fmt.Printf("mapped %d directories under %s\n", m.Len(), *top)
}

func cmdZipList(args []string) {
	fs := flag.NewFlagSet("zip-list", flag.ExitOnError)
	member := fs.String("member", "", "print this member's lines instead of the manifest")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fatal("usage: seqsplit zip-list [-member NAME] <file.zip>")
	}
	zipPath := fs.Arg(0)

	if *member != "" {
		err := ziplist.Lines(zipPath, *member, func(line string) error {
			fmt.Println(line)
			return nil
		})
		if err != nil {
			fatal("zip-list: %v", err)
		}
		return
	}

	names, err := ziplist.Manifest(zipPath)
	if err != nil {
		fatal("zip-list: %v", err)
	}
	for _, n := range names {
		fmt.Println(n)
	}
}

func cmdRuns(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	n := fs.Int("n", 10, "number of runs to show")
	fs.Parse(args)

	db, err := index.Open(cfg.IndexPath)
	if err != nil {
		fatal("runs: %v", err)
	}
	defer db.Close()

	runs, err := db.Recent(*n)
	if err != nil {
		fatal("runs: %v", err)
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return
	}
	for _, r := range runs {
		fmt.Printf("%d  %s  %s -> %s  %d lines / %d files (max %d)\n",
			r.ID, r.Started.Local().Format("2006-01-02 15:04"),
			r.Input, r.Prefix, r.Lines, r.Segments, r.MaxItems)
	}
}

// recordRun appends to the run index; index trouble is reported but never
// fails a split that already wrote its artifacts.
func recordRun(cfg config.Config, r index.Run) {
	db, err := index.Open(cfg.IndexPath)
	if err != nil {
		log.Warn().Err(err).Msg("run index unavailable")
		return
	}
	defer db.Close()

	if err := db.Record(r); err != nil {
		log.Warn().Err(err).Msg("could not record run")
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func usage() {
	fmt.Fprintf(os.Stderr, `seqsplit v%s — split huge two-level tagged files

Usage:
  seqsplit split -in <file> -out <prefix> [-max N] [-prefixes a:,b:] [-sep S]
  seqsplit watch [-dir D] [-pattern P] [-out D] [-max N]
  seqsplit find -root <dir> -pattern <wildcard> [-dirs]
  seqsplit copy -mode suffix -in <dir> -out <dir> -suffixes .a:.b
  seqsplit copy -mode query -list <file> -top <dir> -out <dir> [-prefix P] [-suffix S]
  seqsplit dirmap -top <dir> -pattern <wildcard> -out <dir> [-desc NAME]
  seqsplit zip-list [-member NAME] <file.zip>
  seqsplit compress <file>
  seqsplit decompress <file.zst>
  seqsplit runs [-n N]
  seqsplit version

Input format: ">>" opens a group, ">" opens an item, all other non-blank
lines are item data. Output files are never overwritten.

Configuration: ~/.config/seqsplit/config.toml
`, split.Version)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "seqsplit: "+format+"\n", args...)
	os.Exit(1)
}
