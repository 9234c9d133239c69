package types

// Transcript is the full output of the speech-to-text engine for one source
// video: ordered, timestamped segments plus the flat transcript text.
type Transcript struct {
	Segments []Segment `json:"segments"`
	Text     string    `json:"text"`
}

// Segment is a timestamped unit of transcribed speech. Times are seconds
// from the start of whatever timeline the segment belongs to (source video
// for adapter output, clip-local after windowing).
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type Mood string

const (
	MoodHappy     Mood = "happy"
	MoodSad       Mood = "sad"
	MoodEnergetic Mood = "energetic"
	MoodCalm      Mood = "calm"
	MoodDramatic  Mood = "dramatic"
)

type Tempo string

const (
	TempoSlow   Tempo = "slow"
	TempoMedium Tempo = "medium"
	TempoFast   Tempo = "fast"
)

// AudioFeatures summarizes the source's content for music selection.
// Genre is carried for future selection strategies and is currently unset.
type AudioFeatures struct {
	Mood  Mood
	Tempo Tempo
	Genre string
}

// ClipWindow is one fixed-duration slice of the source video. Index is
// 1-based. The final window of a run may be shorter than the configured
// window size.
type ClipWindow struct {
	Index    int
	Start    float64
	End      float64
	Duration float64
}

// VolumeInstruction is one directive of a ducking plan. A Constant
// instruction applies for the whole mix; otherwise the volume applies over
// [Start, End) in clip-local seconds. Instructions are ordered and
// non-overlapping.
type VolumeInstruction struct {
	Constant bool
	Start    float64
	End      float64
	Volume   float64
}

// UploadRecord is one file's outcome within an upload batch.
type UploadRecord struct {
	File    string `json:"file"`
	Status  string `json:"status"`
	VideoID string `json:"video_id,omitempty"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

const (
	UploadSuccess = "success"
	UploadFailed  = "failed"
)

// ClipReport summarizes one clip run.
type ClipReport struct {
	Input     string   `json:"input"`
	OutDir    string   `json:"out_dir"`
	Windows   int      `json:"windows"`
	Processed []string `json:"processed"`
	Degraded  []string `json:"degraded,omitempty"`
	Music     string   `json:"music,omitempty"`
}
