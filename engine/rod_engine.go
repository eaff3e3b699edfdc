package engine

import (
	"context"
	"fmt"

	"github.com/use-agent/bestseller/models"
)

// RodExtractFunc runs a browser extraction. It is injected from main so
// that engine does not import scraper.
type RodExtractFunc func(ctx context.Context, req *models.ExtractRequest) (*Result, error)

// RodEngine is a browser-based engine that delegates to the scraper.
// forceStealth distinguishes "rod" from "rod-stealth".
type RodEngine struct {
	extract      RodExtractFunc
	forceStealth bool
	name         string
}

// NewRodEngine creates a RodEngine.
func NewRodEngine(extract RodExtractFunc, forceStealth bool) *RodEngine {
	name := "rod"
	if forceStealth {
		name = "rod-stealth"
	}
	return &RodEngine{
		extract:      extract,
		forceStealth: forceStealth,
		name:         name,
	}
}

func (e *RodEngine) Name() string { return e.name }

func (e *RodEngine) Extract(ctx context.Context, req *models.ExtractRequest) (*Result, error) {
	if e.extract == nil {
		return nil, fmt.Errorf("%s: extract func not configured", e.name)
	}

	// Clone the request so we don't mutate the caller's copy.
	r := *req
	if e.forceStealth {
		stealth := true
		r.Stealth = &stealth
	}

	result, err := e.extract(ctx, &r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.name, err)
	}

	result.EngineName = e.name
	return result, nil
}
