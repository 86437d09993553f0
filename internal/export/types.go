package export

const FormatEDL = "edl"

// Request asks for the open timeline of a project to be exported.
type Request struct {
	FrameRate float64 `json:"frame_rate"`
	OutputDir string  `json:"output_dir"`
	// UploadKey, when set, also stores the result with the configured storage
	// backend under this key.
	UploadKey string `json:"upload_key,omitempty"`
}

type Response struct {
	Status     string   `json:"status"`
	Format     string   `json:"format"`
	OutputPath string   `json:"output_path,omitempty"`
	EventCount int      `json:"event_count"`
	Skipped    []string `json:"skipped"`
	Uploaded   bool     `json:"uploaded"`
}

// Event is one EDL edit: a span of source media placed on the record
// timeline.
type Event struct {
	ElementID string
	ClipName  string
	MediaPath string
	Track     string
	SourceIn  int64
	SourceOut int64
	RecordIn  int64
	RecordOut int64
}
