// Package convert orchestrates PMU-to-BIDS conversion: decode each input
// file, label the signals, and hand the set to the archiver.
package convert

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cbinyu/dcm2bidsphysio/internal/pmu"
	"github.com/cbinyu/dcm2bidsphysio/pkg/physio"
)

// Archiver is the slice of the signal container the converter needs:
// the two BIDS save strategies.
type Archiver interface {
	Save(set *physio.SignalSet, prefix string) error
	SaveWithTrigger(set *physio.SignalSet, prefix string) error
}

// BIDSArchiver writes signal sets to disk with the physio package.
type BIDSArchiver struct{}

func (BIDSArchiver) Save(set *physio.SignalSet, prefix string) error {
	return set.SaveToBIDS(prefix)
}

func (BIDSArchiver) SaveWithTrigger(set *physio.SignalSet, prefix string) error {
	return set.SaveToBIDSWithTrigger(prefix)
}

// labelRules maps decoder type tokens to canonical BIDS labels by
// substring. Checked in order, first match wins; a type matching no rule
// passes through unchanged.
var labelRules = []struct {
	substr string
	label  string
}{
	{"PULS", "cardiac"},
	{"RESP", "respiratory"},
	{"TRIGGER", "trigger"},
}

func labelFor(physioType string) string {
	for _, r := range labelRules {
		if strings.Contains(physioType, r.substr) {
			return r.label
		}
	}
	return physioType
}

// strippedSuffixes are trimmed from the tail of the output prefix, each at
// most once and in this order, so the matching functional image filename
// (or an existing physio filename) can be passed as the prefix directly.
var strippedSuffixes = []string{".gz", ".nii", "_physio", "_bold"}

func trimPrefix(prefix string) string {
	for _, suffix := range strippedSuffixes {
		prefix = strings.TrimSuffix(prefix, suffix)
	}
	return prefix
}

// Converter decodes PMU files and hands the labeled signals to an Archiver.
type Converter struct {
	decoder  *pmu.Decoder
	archiver Archiver
	logger   *zap.Logger
}

// New creates a Converter from the given components. A nil logger
// disables logging.
func New(dec *pmu.Decoder, arch Archiver, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{decoder: dec, archiver: arch, logger: logger}
}

// ToBIDS decodes every input file, labels the resulting signals, and saves
// them under the given BIDS prefix. Signals keep the input file order. A
// file that fails to decode aborts the whole conversion; a partial signal
// set is never written. Exactly one save runs: the trigger-aware one when
// a trigger signal is present, the plain one otherwise.
func (c *Converter) ToBIDS(files []string, bidsPrefix string) error {
	if len(files) == 0 {
		return errors.New("convert: no input files")
	}

	set := physio.NewSignalSet()
	for _, file := range files {
		rec, err := c.decoder.Decode(file)
		if err != nil {
			return fmt.Errorf("convert: decode: %w", err)
		}
		label := labelFor(rec.Type)
		c.logger.Info("decoded physio file",
			zap.String("file", file),
			zap.String("type", rec.Type),
			zap.String("label", label),
			zap.Int("samples", len(rec.Samples)))
		set.Append(&physio.Signal{
			Label:        label,
			Units:        "",
			SamplingRate: rec.SamplingRate,
			StartTime:    float64(rec.MDHTime[0]),
			Samples:      rec.Samples,
		})
	}

	prefix := trimPrefix(bidsPrefix)
	if set.HasLabel("trigger") {
		if err := c.archiver.SaveWithTrigger(set, prefix); err != nil {
			return fmt.Errorf("convert: save with trigger: %w", err)
		}
		return nil
	}
	if err := c.archiver.Save(set, prefix); err != nil {
		return fmt.Errorf("convert: save: %w", err)
	}
	return nil
}
