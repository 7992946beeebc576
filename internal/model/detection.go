package model

// Detection is a single classification event as returned by GET /detections.
type Detection struct {
	Image      string  `json:"image"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Timestamp  string  `json:"timestamp"`
	Msg        string  `json:"msg"`
}
