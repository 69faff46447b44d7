package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/adherence/internal/model"
)

const timestampLayout = time.RFC3339Nano

func marshalBlob(kind string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", kind, err)
	}
	return string(data), nil
}

// unmarshalDayLog parses a stored blob, normalizing nil collections so the
// result is always safe to merge into.
func unmarshalDayLog(data string) (model.DayLog, error) {
	log := model.NewDayLog()
	if err := json.Unmarshal([]byte(data), &log); err != nil {
		return model.NewDayLog(), fmt.Errorf("unmarshal day log: %w", err)
	}
	if log.Meals == nil {
		log.Meals = map[string]model.MealRecord{}
	}
	if log.MajorDeviations == nil {
		log.MajorDeviations = []model.DeviationEntry{}
	}
	return log, nil
}

func unmarshalSupportLog(data string) (model.SupportLog, error) {
	log := model.NewSupportLog()
	if err := json.Unmarshal([]byte(data), &log); err != nil {
		return model.NewSupportLog(), fmt.Errorf("unmarshal support log: %w", err)
	}
	if log.Protocols == nil {
		log.Protocols = map[string]model.SupportRecord{}
	}
	return log, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
