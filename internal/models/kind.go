package models

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindSleep      Kind = "sleep"
	KindDiet       Kind = "diet"
	KindMenstrual  Kind = "menstrual"
	KindSymptoms   Kind = "symptoms"
	KindPrediction Kind = "prediction"
)

// LogKinds are the kinds exposed through the insert/get_all endpoints.
func LogKinds() []Kind {
	return []Kind{KindSleep, KindDiet, KindMenstrual, KindSymptoms}
}

func AllKinds() []Kind {
	return append(LogKinds(), KindPrediction)
}

func ParseKind(raw string) (Kind, error) {
	normalized := Kind(strings.ToLower(strings.TrimSpace(raw)))
	switch normalized {
	case KindSleep, KindDiet, KindMenstrual, KindSymptoms, KindPrediction:
		return normalized, nil
	case "predictions":
		return KindPrediction, nil
	default:
		return "", fmt.Errorf("unknown record kind %q", raw)
	}
}

func (kind Kind) Table() string {
	switch kind {
	case KindSleep:
		return "sleep_logs"
	case KindDiet:
		return "diet_logs"
	case KindMenstrual:
		return "menstrual_logs"
	case KindSymptoms:
		return "symptoms_logs"
	case KindPrediction:
		return "predictions"
	default:
		return ""
	}
}

// New returns an empty record of the kind, or nil for an unknown kind.
func (kind Kind) New() Record {
	switch kind {
	case KindSleep:
		return &SleepLog{}
	case KindDiet:
		return &DietLog{Items: ItemList{}}
	case KindMenstrual:
		return &MenstrualLog{}
	case KindSymptoms:
		return &SymptomsLog{}
	case KindPrediction:
		return &Prediction{}
	default:
		return nil
	}
}
