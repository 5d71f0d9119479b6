package pmu

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Per the Siemens IDEA documentation the PMU samples every signal at a
// fixed 2.5 ms interval; the rate is format knowledge, not read from the file.
const ve11cSamplingRate = 400

// In-band control codes mixed into the VE11C sample stream.
const (
	markTriggerOn  = 5000
	markTriggerOff = 6000
	markEndOfData  = 5003
)

var (
	infoRegionRe = regexp.MustCompile(`5002(.*?)6002`)
	logVersionRe = regexp.MustCompile(`LOGVERSION_([A-Z]*)`)
)

// parseVE11C decodes a VE11C-format PMU file. The header line interleaves
// two "5002 ... 6002" metadata regions with surrounding text and ends with
// the sample stream; trailer lines carry statistics and the start/stop
// times of the MDH and MPCU clocks. Any structural surprise is an error,
// so Decode can move on to the next candidate version.
func (d *Decoder) parseVE11C(path string) (Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Recording{}, fmt.Errorf("read: %w", err)
	}
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}

	segs := splitKeepingGroups(infoRegionRe, lines[0])
	if len(segs) < 5 {
		return Recording{}, fmt.Errorf("header line has %d of 5 expected segments", len(segs))
	}

	rec := Recording{SamplingRate: ve11cSamplingRate}

	// The first region holds the triggering method and gate times, which we
	// ignore; the second names the signal type.
	if m := logVersionRe.FindStringSubmatch(segs[1]); m != nil {
		rec.Type = m[1]
	} else {
		d.logger.Warn("could not find type of recording, setting type to Unknown",
			zap.String("file", path))
		rec.Type = "Unknown"
	}

	// After the second region comes the sample stream: space-separated
	// integers, sometimes with an empty leading token from the separator.
	tokens := strings.Split(segs[4], " ")
	if len(tokens) > 0 && tokens[0] == "" {
		tokens = tokens[1:]
	}
	raw := make([]int, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.Atoi(tok)
		if err != nil {
			return Recording{}, fmt.Errorf("sample stream token %d: %w", i, err)
		}
		raw[i] = v
	}

	// 5003 marks the end of the recording; drop it and anything after it.
	if end := slices.Index(raw, markEndOfData); end >= 0 {
		raw = raw[:end]
	} else {
		d.logger.Warn("end of physio recording not found, keeping whole data",
			zap.String("file", path))
	}

	// 5000/6000 are trigger on/off marks, not sample values; NaN holds
	// their stream positions.
	rec.Samples = make([]float64, len(raw))
	for i, v := range raw {
		if v == markTriggerOn || v == markTriggerOff {
			rec.Samples[i] = math.NaN()
		} else {
			rec.Samples[i] = float64(v)
		}
	}

	// Trailer lines with a clock tag and a LogStart/LogStop sub-tag carry
	// the recording window; statistics lines are ignored.
	for _, line := range lines[1:] {
		if strings.Contains(line, "MPCUTime") {
			if err := setClockPair(&rec.MPCUTime, line); err != nil {
				return Recording{}, err
			}
		}
		if strings.Contains(line, "MDHTime") {
			if err := setClockPair(&rec.MDHTime, line); err != nil {
				return Recording{}, err
			}
		}
	}

	return rec, nil
}

// setClockPair fills one slot of a start/stop pair from a trailer line like
// "LogStartMDHTime:  36632877". The second field is ms since local midnight.
// Lines with neither sub-tag are left alone.
func setClockPair(pair *[2]int, line string) error {
	var slot *int
	switch {
	case strings.Contains(line, "LogStart"):
		slot = &pair[0]
	case strings.Contains(line, "LogStop"):
		slot = &pair[1]
	default:
		return nil
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return fmt.Errorf("timing line %q has no value", line)
	}
	v, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("timing line %q: %w", line, err)
	}
	*slot = v
	return nil
}

// splitKeepingGroups splits s around every match of re, interleaving the
// text between matches with each match's first capture group:
// [before, group, between, group, ..., after].
func splitKeepingGroups(re *regexp.Regexp, s string) []string {
	var parts []string
	last := 0
	for _, m := range re.FindAllStringSubmatchIndex(s, -1) {
		parts = append(parts, s[last:m[0]], s[m[2]:m[3]])
		last = m[1]
	}
	return append(parts, s[last:])
}
