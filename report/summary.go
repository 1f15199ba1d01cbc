package report

import (
	"encoding/json"
)

// Summary is the per-address tally of a capture run, persisted between runs.
type Summary struct {
	Items []Item `json:"items"`
}

type Item struct {
	Mac     string `json:"mac"`
	Vendor  string `json:"vendor,omitempty"`
	FirstTs int64  `json:"firstTs"`
	LastTs  int64  `json:"lastTs"`
	Count   int    `json:"count"`
}

func NewSummary() Summary {
	return Summary{
		// nil vs empty slice matters when marshalling to json
		Items: make([]Item, 0),
	}
}

func FromJson(data []byte) (Summary, error) {
	var summary Summary
	err := json.Unmarshal(data, &summary)
	return summary, err
}

func (s *Summary) ToJson() ([]byte, error) {
	return json.Marshal(s)
}
