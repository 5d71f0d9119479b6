package pmu

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrUnrecognizedFormat reports that no known scanner software version
// could parse a file. Check for it with errors.Is.
var ErrUnrecognizedFormat = errors.New("not a recognized Siemens PMU file")

type versionParser struct {
	name  string
	parse func(*Decoder, string) (Recording, error)
}

// knownVersions lists the supported scanner software versions in the order
// Decode attempts them. The first parser that succeeds wins.
var knownVersions = []versionParser{
	{"VE11C", (*Decoder).parseVE11C},
}

// Versions returns the names of the scanner software versions Decode
// recognizes, in attempt order.
func Versions() []string {
	names := make([]string, len(knownVersions))
	for i, v := range knownVersions {
		names[i] = v.name
	}
	return names
}

// Decoder reads Siemens PMU physiological log files.
type Decoder struct {
	logger *zap.Logger
}

// NewDecoder creates a Decoder. A nil logger disables logging.
func NewDecoder(logger *zap.Logger) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{logger: logger}
}

// Decode reads a PMU file, attempting every known software version in
// preference order until one parses. A failed attempt is logged and the
// next version is tried; if all fail, the returned error wraps
// ErrUnrecognizedFormat.
func (d *Decoder) Decode(path string) (Recording, error) {
	return d.decode(path, knownVersions)
}

// DecodeVersion reads a PMU file as the named software version only.
// An unknown version name is an immediate error; a parse failure reports
// the file as unrecognized, same as Decode.
func (d *Decoder) DecodeVersion(path, version string) (Recording, error) {
	for i, v := range knownVersions {
		if v.name == version {
			return d.decode(path, knownVersions[i:i+1])
		}
	}
	return Recording{}, fmt.Errorf("pmu: unknown software version %q", version)
}

func (d *Decoder) decode(path string, versions []versionParser) (Recording, error) {
	for _, v := range versions {
		rec, err := v.parse(d, path)
		if err == nil {
			return rec, nil
		}
		d.logger.Warn("file does not parse as this software version",
			zap.String("file", path),
			zap.String("version", v.name),
			zap.Error(err))
	}
	return Recording{}, fmt.Errorf("pmu: %s: %w", path, ErrUnrecognizedFormat)
}
