package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/storage"
)

// Run is the self-contained JSON form of a stored run.
type Run struct {
	Metadata storage.RunMetadata  `json:"metadata"`
	Frames   []int                `json:"frames"`
	Series   map[string][]float64 `json:"series"`
	Final    *cloth.Snapshot      `json:"final,omitempty"`
}

// LoadRun gathers everything the store holds for runID. A missing snapshot is
// not an error; older runs may not have one.
func LoadRun(st *storage.Store, runID string) (*Run, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, err
	}
	frames, series, err := st.LoadSeries(runID)
	if err != nil {
		return nil, err
	}
	run := &Run{Metadata: *meta, Frames: frames, Series: series}
	if snap, err := st.LoadSnapshot(runID); err == nil {
		run.Final = snap
	}
	return run, nil
}

func WriteJSON(w io.Writer, run *Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}
