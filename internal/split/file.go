package split

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/johns/seqsplit/internal/outpath"
	"github.com/johns/seqsplit/internal/runlog"
)

// File splits inputPath into prefix_1.txt, prefix_2.txt, ... and writes a
// run log to prefix_log.txt. Both the segments and the log are create-only;
// any leftover artifact from a prior run with the same prefix aborts the
// run before input processing begins.
func File(ctx context.Context, inputPath, prefix string, opts Options) (Result, error) {
	if opts.MaxItems <= 0 {
		return Result{}, fmt.Errorf("%w: max items must be positive, got %d", ErrConfig, opts.MaxItems)
	}
	if inputPath == "" {
		return Result{}, fmt.Errorf("%w: input path is empty", ErrConfig)
	}
	if prefix == "" {
		return Result{}, fmt.Errorf("%w: output prefix is empty", ErrConfig)
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return Result{}, fmt.Errorf("open input %s: %w", inputPath, err)
	}
	defer in.Close()

	log, err := runlog.NewFileSink(outpath.Log(prefix))
	if err != nil {
		return Result{}, err
	}

	log.Settings(runlog.Settings{
		Tool:          "seqsplit",
		Version:       Version,
		Input:         inputPath,
		OutputPrefix:  prefix,
		MaxItems:      opts.MaxItems,
		FieldPrefixes: opts.FieldPrefixes,
		Separator:     opts.Separator,
		Start:         time.Now(),
	})

	res, err := Run(ctx, in, opts, &outpath.Writer{Prefix: prefix}, log)
	if err != nil {
		log.Close()
		return res, err
	}

	return res, log.Close()
}
