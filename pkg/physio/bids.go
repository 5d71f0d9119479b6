package physio

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/klauspost/compress/gzip"
)

// recording is one output unit: the signals that share a sampling rate and
// start time, written together as a single .tsv.gz/.json pair.
type recording struct {
	rate    int
	start   float64 // ms since local midnight
	signals []*Signal
}

// sidecar is the BIDS physio JSON sidecar. StartTime is in seconds,
// relative to the recording reference (see SaveToBIDS and
// SaveToBIDSWithTrigger for what the reference is).
type sidecar struct {
	SamplingFrequency int      `json:"SamplingFrequency"`
	StartTime         float64  `json:"StartTime"`
	Columns           []string `json:"Columns"`
}

// SaveToBIDS writes the set as BIDS physiological recordings under the
// given path prefix. Signals sharing a sampling rate and start time form
// one recording named "<prefix>_physio"; when the set splits into several
// recordings, each is tagged "<prefix>_recording-<label>_physio" after its
// first signal. Sidecar start times are relative to the earliest recording
// in the set.
func (s *SignalSet) SaveToBIDS(prefix string) error {
	recs := s.recordings()
	if len(recs) == 0 {
		return errors.New("physio: empty signal set")
	}

	ref := recs[0].start
	for _, r := range recs[1:] {
		if r.start < ref {
			ref = r.start
		}
	}
	return writeRecordings(prefix, recs, ref/1000, nil)
}

// SaveToBIDSWithTrigger writes the set like SaveToBIDS, but derives scan
// timing from the trigger channel: the reference instant is the first
// trigger onset, so sidecar start times say where each recording sits
// relative to the scanner run (negative when logging started before the
// first volume). Trigger columns are written as 0/1 onset indicators
// instead of raw values. Fails if the set has no trigger signal or its
// onsets cannot be detected.
func (s *SignalSet) SaveToBIDSWithTrigger(prefix string) error {
	onsets := make(map[*Signal][]int)
	var first *Signal
	for _, sig := range s.signals {
		if sig.Label != "trigger" {
			continue
		}
		onsets[sig] = triggerOnsets(sig.Samples)
		if first == nil {
			if len(onsets[sig]) == 0 {
				return errors.New("physio: trigger signal has no detectable onsets")
			}
			first = sig
		}
	}
	if first == nil {
		return errors.New("physio: no trigger signal in set")
	}

	ref := first.StartTime/1000 + float64(onsets[first][0])/float64(first.SamplingRate)
	return writeRecordings(prefix, s.recordings(), ref, onsets)
}

// recordings groups the signals by (sampling rate, start time), preserving
// first-seen order of both the groups and the signals inside each.
func (s *SignalSet) recordings() []recording {
	var recs []recording
outer:
	for _, sig := range s.signals {
		for i := range recs {
			if recs[i].rate == sig.SamplingRate && recs[i].start == sig.StartTime {
				recs[i].signals = append(recs[i].signals, sig)
				continue outer
			}
		}
		recs = append(recs, recording{rate: sig.SamplingRate, start: sig.StartTime, signals: []*Signal{sig}})
	}
	return recs
}

// writeRecordings writes every recording, collecting failures instead of
// stopping at the first.
func writeRecordings(prefix string, recs []recording, refSeconds float64, onsets map[*Signal][]int) error {
	var errs []error
	for _, r := range recs {
		base := prefix + "_physio"
		if len(recs) > 1 {
			base = fmt.Sprintf("%s_recording-%s_physio", prefix, r.signals[0].Label)
		}
		if err := writeRecording(base, r, r.start/1000-refSeconds, onsets); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// writeRecording writes one .tsv.gz/.json pair.
func writeRecording(base string, r recording, startSeconds float64, onsets map[*Signal][]int) error {
	cols := make([][]float64, len(r.signals))
	names := make([]string, len(r.signals))
	rows := 0
	for i, sig := range r.signals {
		names[i] = sig.Label
		if o, ok := onsets[sig]; ok {
			cols[i] = onsetIndicator(len(sig.Samples), o)
		} else {
			cols[i] = sig.Samples
		}
		if len(cols[i]) > rows {
			rows = len(cols[i])
		}
	}

	side := sidecar{SamplingFrequency: r.rate, StartTime: startSeconds, Columns: names}
	if err := writeSidecar(base+".json", side); err != nil {
		return err
	}
	return writeTSV(base+".tsv.gz", cols, rows)
}

func writeSidecar(path string, side sidecar) error {
	data, err := json.MarshalIndent(side, "", "\t")
	if err != nil {
		return fmt.Errorf("physio: marshal sidecar: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("physio: write %s: %w", path, err)
	}
	return nil
}

// writeTSV writes the columns as gzipped tab-separated rows. Missing
// samples and rows past a column's end are written as "n/a", the BIDS
// marker for absent values.
func writeTSV(path string, cols [][]float64, rows int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("physio: create %s: %w", path, err)
	}
	zw := gzip.NewWriter(f)
	w := csv.NewWriter(zw)
	w.Comma = '\t'

	record := make([]string, len(cols))
	for row := 0; row < rows; row++ {
		for c, col := range cols {
			record[c] = formatSample(col, row)
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("physio: write %s: %w", path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("physio: flush %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("physio: close %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("physio: close %s: %w", path, err)
	}
	return nil
}

func formatSample(col []float64, row int) string {
	if row >= len(col) || math.IsNaN(col[row]) {
		return "n/a"
	}
	return strconv.FormatFloat(col[row], 'g', -1, 64)
}
