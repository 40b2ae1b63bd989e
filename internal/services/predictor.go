package services

import (
	"context"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/logger"
	"delivery-eta-service/internal/platform/obs"
	"delivery-eta-service/internal/ports"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// DurationPredictor asks the duration model for a segment estimate under a RetryPolicy.
type DurationPredictor struct {
	model   ports.DurationModel
	policy  RetryPolicy
	timeout time.Duration
	log     *logger.Logger
}

func NewDurationPredictor(
	model ports.DurationModel,
	policy RetryPolicy,
	timeout time.Duration,
	log *logger.Logger,
) *DurationPredictor {
	return &DurationPredictor{
		model:   model,
		policy:  policy,
		timeout: timeout,
		log:     log.WithComponent("duration_predictor"),
	}
}

// Predict returns the model's duration in seconds, or *domain.PredictionError
// once every attempt has failed. The baseline is never substituted.
func (p *DurationPredictor) Predict(
	ctx context.Context,
	distanceKm float64,
	baselineDurationSec float64,
	hour int,
	weather domain.WeatherCategory,
	profile domain.VehicleProfile,
) (float64, error) {
	if hour < 0 || hour > 23 {
		return 0, &domain.PredictionError{Cause: fmt.Errorf("hour %d out of range 0..23", hour)}
	}
	if p.model == nil {
		return 0, &domain.PredictionError{Cause: fmt.Errorf("no duration model configured")}
	}

	req := ports.PredictionRequest{
		DistanceKm:          distanceKm,
		BaselineDurationSec: baselineDurationSec,
		Hour:                hour,
		Weather:             weather,
		Vehicle:             profile,
	}

	var predicted float64
	attempts, err := p.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		v, err := p.attempt(ctx, req)
		if err != nil {
			p.log.WithFields(logrus.Fields{
				"attempt":      attempt,
				"max_attempts": p.policy.MaxAttempts,
			}).WithError(err).Warn("duration prediction attempt failed")
			return err
		}
		predicted = v
		return nil
	})
	if err != nil {
		return 0, &domain.PredictionError{Attempts: attempts, Cause: err}
	}

	return predicted, nil
}

func (p *DurationPredictor) attempt(ctx context.Context, req ports.PredictionRequest) (v float64, err error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	defer obs.Time(ctx, p.log, "prediction.predict")(&err)

	v, err = p.model.PredictDuration(ctx, req)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("malformed prediction %v", v)
	}
	return v, nil
}
