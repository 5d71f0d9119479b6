package convert

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cbinyu/dcm2bidsphysio/internal/pmu"
	"github.com/cbinyu/dcm2bidsphysio/pkg/physio"
)

const (
	pulsContent = "5002 LOGVERSION_PULS 6002 5002 gate 6002 100 200 5000 300 5003\nLogStartMDHTime: 5000\nLogStopMDHTime: 9000\n"
	respContent = "5002 LOGVERSION_RESP 6002 5002 gate 6002 7 8 9 5003\nLogStartMDHTime: 5000\nLogStopMDHTime: 9000\n"
	trigContent = "5002 LOGVERSION_TRIGGER 6002 5002 gate 6002 0 5000 0 0 6000 0 5003\nLogStartMDHTime: 5000\nLogStopMDHTime: 9000\n"
)

// stubArchiver records save calls so tests can assert on the packaging
// branch without any file I/O.
type stubArchiver struct {
	saves        int
	triggerSaves int
	lastSet      *physio.SignalSet
	lastPrefix   string
	err          error
}

func (s *stubArchiver) Save(set *physio.SignalSet, prefix string) error {
	s.saves++
	s.lastSet, s.lastPrefix = set, prefix
	return s.err
}

func (s *stubArchiver) SaveWithTrigger(set *physio.SignalSet, prefix string) error {
	s.triggerSaves++
	s.lastSet, s.lastPrefix = set, prefix
	return s.err
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestConverter(arch Archiver) *Converter {
	return New(pmu.NewDecoder(zap.NewNop()), arch, zap.NewNop())
}

func TestLabelFor(t *testing.T) {
	tests := []struct {
		physioType string
		want       string
	}{
		{"PULS", "cardiac"},
		{"RESP", "respiratory"},
		{"TRIGGER", "trigger"},
		{"PULS_TRIGGER", "cardiac"}, // first rule wins
		{"ECG", "ECG"},
		{"Unknown", "Unknown"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, labelFor(tt.physioType), "labelFor(%q)", tt.physioType)
	}
}

func TestTrimPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a/b_physio.nii.gz", "a/b"},
		{"a/b_physio_bold", "a/b_physio"},
		{"sub-01_task-x_bold.nii.gz", "sub-01_task-x"},
		{"sub-01_task-x_physio", "sub-01_task-x"},
		{"sub-01_task-x", "sub-01_task-x"},
		{"a_physio_dir/file", "a_physio_dir/file"}, // suffixes only strip at the end
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, trimPrefix(tt.in), "trimPrefix(%q)", tt.in)
	}
}

func TestToBIDSPlainSave(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeFixture(t, dir, "scan.puls", pulsContent),
		writeFixture(t, dir, "scan.resp", respContent),
	}
	arch := &stubArchiver{}

	require.NoError(t, newTestConverter(arch).ToBIDS(files, filepath.Join(dir, "sub-01_bold.nii.gz")))

	assert.Equal(t, 1, arch.saves)
	assert.Equal(t, 0, arch.triggerSaves)
	assert.Equal(t, filepath.Join(dir, "sub-01"), arch.lastPrefix)
	assert.Equal(t, []string{"cardiac", "respiratory"}, arch.lastSet.Labels())
}

func TestToBIDSTriggerSave(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeFixture(t, dir, "scan.puls", pulsContent),
		writeFixture(t, dir, "scan.trig", trigContent),
	}
	arch := &stubArchiver{}

	require.NoError(t, newTestConverter(arch).ToBIDS(files, filepath.Join(dir, "sub-01")))

	assert.Equal(t, 0, arch.saves)
	assert.Equal(t, 1, arch.triggerSaves)
	assert.Equal(t, []string{"cardiac", "trigger"}, arch.lastSet.Labels())
}

func TestToBIDSPopulatesSignals(t *testing.T) {
	dir := t.TempDir()
	files := []string{writeFixture(t, dir, "scan.puls", pulsContent)}
	arch := &stubArchiver{}

	require.NoError(t, newTestConverter(arch).ToBIDS(files, filepath.Join(dir, "out")))

	want := []*physio.Signal{{
		Label:        "cardiac",
		Units:        "",
		SamplingRate: 400,
		StartTime:    5000,
		Samples:      []float64{100, 200, math.NaN(), 300},
	}}
	if diff := cmp.Diff(want, arch.lastSet.Signals(), cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("signals mismatch (-want +got):\n%s", diff)
	}
}

func TestToBIDSDecodeFailureAborts(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeFixture(t, dir, "scan.puls", pulsContent),
		writeFixture(t, dir, "scan.bad", "not a pmu file\n"),
	}
	arch := &stubArchiver{}

	err := newTestConverter(arch).ToBIDS(files, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.ErrorIs(t, err, pmu.ErrUnrecognizedFormat)
	assert.Equal(t, 0, arch.saves)
	assert.Equal(t, 0, arch.triggerSaves)
}

func TestToBIDSNoInputFiles(t *testing.T) {
	err := newTestConverter(&stubArchiver{}).ToBIDS(nil, "out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files")
}

func TestToBIDSArchiverErrorPropagates(t *testing.T) {
	dir := t.TempDir()
	files := []string{writeFixture(t, dir, "scan.puls", pulsContent)}
	arch := &stubArchiver{err: os.ErrPermission}

	err := newTestConverter(arch).ToBIDS(files, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrPermission)
}
