package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cbinyu/dcm2bidsphysio/internal/config"
	"github.com/cbinyu/dcm2bidsphysio/internal/convert"
	"github.com/cbinyu/dcm2bidsphysio/internal/logging"
	"github.com/cbinyu/dcm2bidsphysio/internal/pmu"
	"github.com/cbinyu/dcm2bidsphysio/internal/release"
	"github.com/cbinyu/dcm2bidsphysio/internal/version"
)

// fileList collects repeated -i/--infiles values.
type fileList []string

func (f *fileList) String() string { return strings.Join(*f, ", ") }

func (f *fileList) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func main() {
	var (
		infiles     fileList
		bidsPrefix  string
		showVersion bool
	)
	flag.Var(&infiles, "i", "Siemens PMU physio file; repeat for multiple channels")
	flag.Var(&infiles, "infiles", "alias for -i")
	flag.StringVar(&bidsPrefix, "b", "", "prefix of the BIDS files; it should match the _bold.nii.gz")
	flag.StringVar(&bidsPrefix, "bidsprefix", "", "alias for -b")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: pmu2bidsphysio -i <physio file> [-i <physio file> ...] -b <BIDS prefix>\n\n"+
				"Convert Siemens PMU physiology files (scanner software %s) to BIDS\n"+
				"physiological recordings.\n\n",
			strings.Join(pmu.Versions(), ", "))
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("pmu2bidsphysio %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	if len(infiles) == 0 || bidsPrefix == "" {
		fmt.Fprintln(os.Stderr, "both -i/--infiles and -b/--bidsprefix are required")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if !cfg.Update.Disabled {
		release.NewChecker(logger).Notify(context.Background(), version.Version)
	}

	// Make sure the output directory exists before converting.
	if dir := filepath.Dir(bidsPrefix); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("failed to create output directory",
				zap.String("dir", dir), zap.Error(err))
		}
	}

	conv := convert.New(pmu.NewDecoder(logger), convert.BIDSArchiver{}, logger)
	if err := conv.ToBIDS(infiles, bidsPrefix); err != nil {
		logger.Fatal("conversion failed", zap.Error(err))
	}
	logger.Info("conversion complete",
		zap.Int("files", len(infiles)),
		zap.String("prefix", bidsPrefix))
}
