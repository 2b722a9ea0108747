package model

type TempoChangeInfo struct {
	Tick          uint64  `json:"tick"`
	Seconds       float64 `json:"seconds"`
	MicrosPerBeat uint32  `json:"micros_per_beat"`
	BPM           float64 `json:"bpm"`
}

type AnalyzeResponse struct {
	OriginalBPM      float64           `json:"original_bpm"`
	MultiTempo       bool              `json:"is_multi_tempo"`
	TempoChanges     []TempoChangeInfo `json:"tempo_changes"`
	NoteCount        int               `json:"note_count"`
	UnmatchedStarts  int               `json:"unmatched_starts"`
	OverlapTotal     int               `json:"overlap_total"`
	OverlapSameTrack int               `json:"overlap_same_track"`
	OverlapCross     int               `json:"overlap_cross_track"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
