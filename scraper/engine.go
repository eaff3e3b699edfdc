package scraper

import (
	"context"

	"github.com/use-agent/bestseller/engine"
	"github.com/use-agent/bestseller/models"
)

// RodEngine exposes the scraper as a fetch engine. With forceStealth every
// request runs with stealth injection regardless of its own setting.
func (s *Scraper) RodEngine(forceStealth bool) *engine.RodEngine {
	return engine.NewRodEngine(func(ctx context.Context, req *models.ExtractRequest) (*engine.Result, error) {
		res, err := s.Extract(ctx, req)
		if err != nil {
			return nil, err
		}
		return &engine.Result{ExtractionResult: res.ExtractionResult, FinalURL: res.FinalURL}, nil
	}, forceStealth)
}
