package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/endocare/internal/inference"
	"github.com/terraincognita07/endocare/internal/models"
)

var flareRequestFields = []string{
	"date",
	"duration_h",
	"quality_pct",
	"cycle_day",
	"pain_today",
	"processed_sugar",
	"caffeine_evening",
}

type FlareScorer interface {
	Predict(features inference.Features) (float64, error)
}

type PredictionRecorder interface {
	InsertRecord(ctx context.Context, ownerID uint, record models.Record) (models.Record, error)
}

type FlareRequest struct {
	Date     string
	Features inference.Features
}

type FlareResult struct {
	Probability float64
	Recorded    bool
	Prediction  *models.Prediction
}

type FlareService struct {
	scorer   FlareScorer
	recorder PredictionRecorder
	logger   logrus.FieldLogger
}

func NewFlareService(scorer FlareScorer, recorder PredictionRecorder, logger logrus.FieldLogger) *FlareService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &FlareService{
		scorer:   scorer,
		recorder: recorder,
		logger:   logger,
	}
}

func FlareRequestFields() []string {
	return append([]string(nil), flareRequestFields...)
}

// ParseFlareRequest checks presence in declared order, then shapes and
// ranges.
func ParseFlareRequest(fields Fields) (FlareRequest, error) {
	if err := requireFields(fields, flareRequestFields); err != nil {
		return FlareRequest{}, err
	}

	date, err := decodeDate(fields, "date")
	if err != nil {
		return FlareRequest{}, err
	}
	durationH, err := decodeFloat(fields, "duration_h", 0, 24)
	if err != nil {
		return FlareRequest{}, err
	}
	qualityPct, err := decodeFloat(fields, "quality_pct", 0, 100)
	if err != nil {
		return FlareRequest{}, err
	}
	cycleDay, err := decodeIntAtLeast(fields, "cycle_day", 1)
	if err != nil {
		return FlareRequest{}, err
	}
	painToday, err := decodeInt(fields, "pain_today", 0, 10)
	if err != nil {
		return FlareRequest{}, err
	}
	processedSugar, err := decodeInt(fields, "processed_sugar", 0, 1)
	if err != nil {
		return FlareRequest{}, err
	}
	caffeineEvening, err := decodeInt(fields, "caffeine_evening", 0, 1)
	if err != nil {
		return FlareRequest{}, err
	}

	return FlareRequest{
		Date: date,
		Features: inference.Features{
			DurationH:       durationH,
			QualityPct:      qualityPct,
			CycleDay:        cycleDay,
			PainToday:       painToday,
			ProcessedSugar:  processedSugar,
			CaffeineEvening: caffeineEvening,
		},
	}, nil
}

// Validate re-checks a request built outside ParseFlareRequest.
func (request FlareRequest) Validate() error {
	switch {
	case !isAcceptedDate(request.Date):
		return invalidField("date", "must be YYYY-MM-DD or RFC 3339")
	case request.Features.DurationH < 0 || request.Features.DurationH > 24:
		return invalidField("duration_h", "must be between 0 and 24")
	case request.Features.QualityPct < 0 || request.Features.QualityPct > 100:
		return invalidField("quality_pct", "must be between 0 and 100")
	case request.Features.CycleDay < 1:
		return invalidField("cycle_day", "must be at least 1")
	case request.Features.PainToday < 0 || request.Features.PainToday > 10:
		return invalidField("pain_today", "must be between 0 and 10")
	case request.Features.ProcessedSugar != 0 && request.Features.ProcessedSugar != 1:
		return invalidField("processed_sugar", "must be 0 or 1")
	case request.Features.CaffeineEvening != 0 && request.Features.CaffeineEvening != 1:
		return invalidField("caffeine_evening", "must be 0 or 1")
	}
	return nil
}

// Score returns the probability without recording it.
func (service *FlareService) Score(request FlareRequest) (float64, error) {
	if err := request.Validate(); err != nil {
		return 0, err
	}
	return service.scorer.Predict(request.Features)
}

// PredictFlare scores the request and records the result. The audit write is
// best-effort: its failure is logged and Recorded stays false.
func (service *FlareService) PredictFlare(ctx context.Context, ownerID uint, request FlareRequest) (FlareResult, error) {
	probability, err := service.Score(request)
	if err != nil {
		return FlareResult{}, err
	}

	result := FlareResult{Probability: probability}
	if service.recorder == nil {
		return result, nil
	}

	prediction := &models.Prediction{
		Date:        request.Date,
		CycleDay:    request.Features.CycleDay,
		Probability: probability,
	}
	if _, err := service.recorder.InsertRecord(ctx, ownerID, prediction); err != nil {
		service.logger.WithError(err).WithFields(logrus.Fields{
			"owner_id": ownerID,
			"date":     request.Date,
		}).Warn("prediction audit write failed")
		return result, nil
	}

	result.Recorded = true
	result.Prediction = prediction
	return result, nil
}
