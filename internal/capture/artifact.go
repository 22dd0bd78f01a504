package capture

import (
	"encoding/json"
	"fmt"
)

// DecodeAthletes reads a persisted athletes artifact, which holds either []AthleteDay
// or the degraded []AthleteSummary. Exactly one of the returned slices is non-nil.
func DecodeAthletes(data []byte) ([]AthleteDay, []AthleteSummary, error) {
	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, nil, fmt.Errorf("decoding athletes: %w", err)
	}
	if len(rows) == 0 {
		return []AthleteDay{}, nil, nil
	}

	first := rows[0]
	if _, ok := first["athletes"]; ok {
		var days []AthleteDay
		if err := json.Unmarshal(data, &days); err != nil {
			return nil, nil, fmt.Errorf("decoding athlete days: %w", err)
		}
		return days, nil, nil
	}
	if _, ok := first["athlete"]; ok {
		var summaries []AthleteSummary
		if err := json.Unmarshal(data, &summaries); err != nil {
			return nil, nil, fmt.Errorf("decoding athlete summaries: %w", err)
		}
		return nil, summaries, nil
	}
	return nil, nil, fmt.Errorf("decoding athletes: unrecognized shape")
}
