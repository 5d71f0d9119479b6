// Package pmu decodes physiological log files saved by the PMU
// (Physiological Measurement Unit) of a Siemens MRI scanner.
//
// A PMU file holds one channel (pulse, respiration, scanner trigger, ...)
// as line-oriented text: a header line with delimited metadata regions and
// the raw sample stream, followed by trailer lines with signal statistics
// and the recording's start/stop times on two independent scanner clocks.
// The exact layout depends on the scanner software version; Decode probes
// the versions it knows until one parses.
package pmu

// Recording is the normalized result of decoding one PMU file.
type Recording struct {
	Type         string    // signal type from the header ("PULS", "RESP", "TRIGGER", ...); "Unknown" if the marker is absent
	MDHTime      [2]int    // recording start/stop on the MDH clock, ms since local midnight; zero if the trailer lacks them
	MPCUTime     [2]int    // recording start/stop on the MPCU clock; recovered from the trailer but not used for output timing
	SamplingRate int       // samples per second, fixed per software version
	Samples      []float64 // decoded samples; NaN where the stream carried an in-band trigger mark instead of a value
}
