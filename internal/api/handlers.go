package api

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

const healthCheckTimeout = 3 * time.Second

type Handler struct {
	records        RecordService
	flares         FlarePredictor
	logger         logrus.FieldLogger
	secretKey      []byte
	authRequired   bool
	defaultOwnerID uint
	now            func() time.Time
}

type HandlerOptions struct {
	AuthSecret     string
	AuthRequired   bool
	DefaultOwnerID uint
	Logger         logrus.FieldLogger
}

func NewHandler(records RecordService, flares FlarePredictor, options HandlerOptions) (*Handler, error) {
	if records == nil {
		return nil, errors.New("record service is required")
	}
	if flares == nil {
		return nil, errors.New("flare predictor is required")
	}
	if options.DefaultOwnerID == 0 {
		options.DefaultOwnerID = 1
	}
	if options.AuthRequired && options.AuthSecret == "" {
		return nil, errors.New("auth secret is required when authentication is required")
	}
	logger := options.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Handler{
		records:        records,
		flares:         flares,
		logger:         logger,
		secretKey:      []byte(options.AuthSecret),
		authRequired:   options.AuthRequired,
		defaultOwnerID: options.DefaultOwnerID,
		now:            time.Now,
	}, nil
}
