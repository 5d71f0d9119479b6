// Package physio collects labeled physiological signals and writes them
// as BIDS physiological recordings: a gzipped tab-separated data file plus
// a JSON sidecar per recording.
//
// Quick start:
//
//	set := physio.NewSignalSet()
//	set.Append(&physio.Signal{
//	    Label:        "cardiac",
//	    SamplingRate: 400,
//	    StartTime:    36632877, // ms since local midnight
//	    Samples:      samples,
//	})
//	if err := set.SaveToBIDS("sub-01/func/sub-01_task-rest"); err != nil {
//	    log.Fatal(err)
//	}
//
// Signals sharing a sampling rate and start time are written into one
// recording; mismatched signals are split into separate files tagged with
// a BIDS "recording-<label>" entity. SaveToBIDSWithTrigger additionally
// derives scan timing from a trigger channel: sidecar start times become
// relative to the first scanner trigger and the trigger column is written
// as a 0/1 onset indicator.
package physio
