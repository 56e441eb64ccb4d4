package storage

import (
	"encoding/json"

	"acctune/internal/model"
)

// outcomePayload is the persisted form of a finished search. The
// in-memory outcome keys its results by point, which does not survive
// JSON, so the payload carries them as a list.
type outcomePayload struct {
	Results     []model.Result `json:"results"`
	Optimal     model.Point    `json:"optimal"`
	Iterations  int            `json:"iterations"`
	Repetitions int            `json:"repetitions"`
}

func EncodeOutcome(outcome model.Outcome, repetitions int) ([]byte, error) {
	payload := outcomePayload{
		Results:     make([]model.Result, 0, len(outcome.Tests)),
		Optimal:     outcome.Optimal,
		Iterations:  outcome.Iterations,
		Repetitions: repetitions,
	}
	for _, r := range outcome.Tests {
		payload.Results = append(payload.Results, r)
	}
	return json.Marshal(payload)
}

func DecodeOutcome(data []byte) (model.Outcome, int, error) {
	var payload outcomePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return model.Outcome{}, 0, err
	}
	outcome := model.NewOutcome()
	for _, r := range payload.Results {
		outcome.Record(r)
	}
	outcome.Optimal = payload.Optimal
	outcome.Iterations = payload.Iterations
	return outcome, payload.Repetitions, nil
}

func EncodeResults(results []model.Result) ([]byte, error) {
	return json.Marshal(results)
}

func DecodeResults(data []byte) ([]model.Result, error) {
	var results []model.Result
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func EncodeRawRuns(raws []RawRun) ([]byte, error) {
	return json.Marshal(raws)
}

func DecodeRawRuns(data []byte) ([]RawRun, error) {
	var raws []RawRun
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	return raws, nil
}
