package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	seriesFile   = "series.csv"
	snapshotFile = "snapshot.json"
)

var ErrNoSeries = errors.New("storage: run has no series data")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Columns     int                `json:"columns"`
	Rows        int                `json:"rows"`
	Spacing     float64            `json:"spacing"`
	TimeStep    float64            `json:"time_step"`
	Frames      int                `json:"frames"`
	SampleEvery int                `json:"sample_every"`
	Steps       int                `json:"steps"`
	Cuts        int                `json:"cuts"`
	Severed     int                `json:"severed"`
	Metrics     map[string]float64 `json:"metrics"`
	NonFinite   []string           `json:"non_finite,omitempty"`
	Errors      []string           `json:"errors,omitempty"`
}

// Save writes a run directory holding the metadata, the config that produced
// the run, the sampled series and the final snapshot. It returns the run id.
// Non-finite metrics are listed by name instead of stored, and a final
// snapshot that went NaN/Inf is not written; the recorded errors say why.
// A run that fails to write is removed.
func (s *Store) Save(name string, cfg *config.Config, result *sim.Result) (string, error) {
	runID, runDir, err := s.newRunDir(name)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Name:        name,
		Timestamp:   time.Now(),
		Columns:     cfg.Layout.Columns,
		Rows:        cfg.Layout.Rows,
		Spacing:     cfg.Layout.Spacing,
		TimeStep:    cfg.Physics.TimeStep,
		Frames:      cfg.Run.Frames,
		SampleEvery: cfg.Run.SampleEvery,
		Steps:       result.StepsTaken,
		Cuts:        result.CutsApplied,
		Metrics:     make(map[string]float64, len(result.Metrics)),
	}
	for k, v := range result.Metrics {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			meta.NonFinite = append(meta.NonFinite, k)
			continue
		}
		meta.Metrics[k] = v
	}
	sort.Strings(meta.NonFinite)
	if result.Final != nil {
		meta.Severed = result.Final.Severed()
	}
	for _, e := range result.Errors {
		meta.Errors = append(meta.Errors, e.Error())
	}

	if err := writeRun(runDir, meta, cfg, result); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, cfg *config.Config, result *sim.Result) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return err
	}
	if result.Final != nil && result.Final.Valid() {
		if err := writeJSON(filepath.Join(runDir, snapshotFile), result.Final); err != nil {
			return err
		}
	}

	f, err := os.Create(filepath.Join(runDir, seriesFile))
	if err != nil {
		return err
	}
	if err := WriteSeriesCSV(f, result.Frames, result.Series); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *Store) newRunDir(name string) (string, string, error) {
	base := fmt.Sprintf("%s_%s", name, time.Now().Format("20060102_150405"))
	runID := base
	for n := 2; ; n++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, n)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		var meta RunMetadata
		if err := readJSON(filepath.Join(s.baseDir, entry.Name(), metadataFile), &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	var meta RunMetadata
	if err := readJSON(filepath.Join(s.baseDir, runID, metadataFile), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

func (s *Store) LoadSnapshot(runID string) (*cloth.Snapshot, error) {
	var snap cloth.Snapshot
	if err := readJSON(filepath.Join(s.baseDir, runID, snapshotFile), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *Store) LoadSeries(runID string) ([]int, map[string][]float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return ReadSeriesCSV(f)
}

// SeriesNames returns the keys of series in sorted order.
func SeriesNames(series map[string][]float64) []string {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteSeriesCSV writes one row per sample: the frame followed by each series
// in name order.
func WriteSeriesCSV(out io.Writer, frames []int, series map[string][]float64) error {
	w := csv.NewWriter(out)
	names := SeriesNames(series)

	if err := w.Write(append([]string{"frame"}, names...)); err != nil {
		return err
	}
	for i, frame := range frames {
		row := []string{strconv.Itoa(frame)}
		for _, name := range names {
			val := "0"
			if i < len(series[name]) {
				val = strconv.FormatFloat(series[name][i], 'f', 6, 64)
			}
			row = append(row, val)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func ReadSeriesCSV(in io.Reader) ([]int, map[string][]float64, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, ErrNoSeries
	}

	header := records[0]
	frames := make([]int, 0, len(records)-1)
	series := make(map[string][]float64, len(header)-1)
	for _, name := range header[1:] {
		series[name] = make([]float64, 0, len(records)-1)
	}

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		frame, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		frames = append(frames, frame)

		for j, name := range header[1:] {
			val := 0.0
			if j+1 < len(record) {
				if v, err := strconv.ParseFloat(record[j+1], 64); err == nil {
					val = v
				}
			}
			series[name] = append(series[name], val)
		}
	}

	return frames, series, nil
}
