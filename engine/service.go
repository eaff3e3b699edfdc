package engine

import (
	"context"

	"github.com/use-agent/bestseller/config"
	"github.com/use-agent/bestseller/models"
)

// Service routes a request to the engine its FetchMode asks for.
// Any engine may be nil when the deployment has none.
type Service struct {
	browser    Engine
	static     Engine
	dispatcher *Dispatcher
}

// NewService creates a Service.
func NewService(browser, static Engine, dispatcher *Dispatcher) *Service {
	return &Service{browser: browser, static: static, dispatcher: dispatcher}
}

// NewStandardService wires the usual tiers. "http" uses a fresh HTTPEngine,
// "browser" uses browser, and "auto" races the HTTPEngine against
// escalation (falling back to browser when escalation is nil). Either
// browser engine may be nil on servers without Chrome.
func NewStandardService(cfg config.EngineConfig, browser, escalation Engine) *Service {
	static := NewHTTPEngine(cfg.HTTPTimeout)

	tiers := []Engine{static}
	switch {
	case escalation != nil:
		tiers = append(tiers, escalation)
	case browser != nil:
		tiers = append(tiers, browser)
	}

	return NewService(browser, static, NewDispatcher(tiers, cfg.EscalationDelays))
}

// Extract runs req on the engine selected by req.FetchMode. An unset mode
// means browser.
func (s *Service) Extract(ctx context.Context, req *models.ExtractRequest) (*Result, error) {
	switch req.FetchMode {
	case ModeHTTP:
		if s.static == nil {
			return nil, unavailable(ModeHTTP)
		}
		return s.static.Extract(ctx, req)
	case ModeAuto:
		if s.dispatcher == nil {
			return nil, unavailable(ModeAuto)
		}
		return s.dispatcher.Dispatch(ctx, req)
	case ModeBrowser, "":
		if s.browser == nil {
			return nil, unavailable(ModeBrowser)
		}
		return s.browser.Extract(ctx, req)
	default:
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "unknown fetch mode "+req.FetchMode, nil)
	}
}

func unavailable(mode string) error {
	return models.NewScrapeError(models.ErrCodeInvalidInput, "fetch mode "+mode+" is not available on this server", nil)
}
