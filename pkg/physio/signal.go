package physio

// Signal is one named physiological channel: a uniformly sampled sequence
// with the metadata BIDS needs to place it in time.
type Signal struct {
	Label        string
	Units        string
	SamplingRate int       // samples per second
	StartTime    float64   // recording start, ms since local midnight
	Samples      []float64 // NaN marks samples lost to in-band control codes
}

// SignalSet is an ordered collection of signals destined for one BIDS
// output. Append order is preserved in the output columns.
type SignalSet struct {
	signals []*Signal
}

// NewSignalSet returns an empty SignalSet.
func NewSignalSet() *SignalSet {
	return &SignalSet{}
}

// Append adds a signal to the set.
func (s *SignalSet) Append(sig *Signal) {
	s.signals = append(s.signals, sig)
}

// Len returns the number of signals in the set.
func (s *SignalSet) Len() int {
	return len(s.signals)
}

// Signals returns the signals in append order.
func (s *SignalSet) Signals() []*Signal {
	return s.signals
}

// Labels returns the signal labels in append order.
func (s *SignalSet) Labels() []string {
	labels := make([]string, len(s.signals))
	for i, sig := range s.signals {
		labels[i] = sig.Label
	}
	return labels
}

// HasLabel reports whether any signal in the set carries the given label.
func (s *SignalSet) HasLabel(label string) bool {
	for _, sig := range s.signals {
		if sig.Label == label {
			return true
		}
	}
	return false
}
