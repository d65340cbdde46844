package api

import (
	"context"

	"github.com/terraincognita07/endocare/internal/models"
	"github.com/terraincognita07/endocare/internal/services"
)

type RecordService interface {
	Insert(ctx context.Context, ownerID uint, kind models.Kind, fields services.Fields) (models.Record, error)
	ListAll(ctx context.Context, ownerID uint, kind models.Kind) ([]models.Record, error)
	Ping(ctx context.Context) error
	BackendName() string
}

type FlarePredictor interface {
	PredictFlare(ctx context.Context, ownerID uint, request services.FlareRequest) (services.FlareResult, error)
}
