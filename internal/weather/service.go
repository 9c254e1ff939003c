package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Service fetches a fresh series from the source and runs the evaluator on it.
type Service struct {
	source Source
	log    logrus.FieldLogger
}

// NewService creates a new Service.
func NewService(source Source, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		source: source,
		log:    log.WithField("component", "weather"),
	}
}

// Now answers "can I laba now" at ref for coords.
func (s *Service) Now(ctx context.Context, coords Coordinates, ref time.Time) (NowResult, error) {
	series, err := s.fetch(ctx, coords)
	if err != nil {
		return NowResult{}, err
	}

	res, err := EvaluateNow(series, ref)
	if err != nil {
		return NowResult{}, err
	}

	s.log.WithFields(logrus.Fields{
		"coords":   coords.String(),
		"score":    res.Score,
		"can_laba": res.CanLaba,
		"reason":   string(res.Reason),
	}).Debug("evaluated now")
	return res, nil
}

// Today answers "can I laba today" for the day containing today.
func (s *Service) Today(ctx context.Context, coords Coordinates, today time.Time) (TodayResult, error) {
	series, err := s.fetch(ctx, coords)
	if err != nil {
		return TodayResult{}, err
	}

	res, err := EvaluateToday(series, today)
	if err != nil {
		return TodayResult{}, err
	}

	s.log.WithFields(logrus.Fields{
		"coords":        coords.String(),
		"morning_score": res.Morning.Score,
		"noon_score":    res.Noon.Score,
		"can_laba":      res.CanLaba,
	}).Debug("evaluated today")
	return res, nil
}

func (s *Service) fetch(ctx context.Context, coords Coordinates) (HourlySeries, error) {
	if s.source == nil {
		return HourlySeries{}, fmt.Errorf("%w: no forecast source configured", ErrSourceUnavailable)
	}

	series, err := s.source.Fetch(ctx, coords)
	if err != nil {
		s.log.WithError(err).WithField("source", s.source.Name()).Warn("forecast fetch failed")
		return HourlySeries{}, err
	}
	return series, nil
}
