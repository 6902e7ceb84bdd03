package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/david/syncscout/internal/catalog"
	"github.com/david/syncscout/internal/logging"
	"github.com/david/syncscout/internal/models"
	"github.com/david/syncscout/internal/scoring"
	"github.com/david/syncscout/internal/service"
)

var requestValidator = validator.New(validator.WithRequiredStructEnabled())

type submitRequest struct {
	OpportunityIDs []string `json:"opportunity_ids" validate:"required,min=1,max=50,dive,required"`
}

type decisionRequest struct {
	Accepted *bool `json:"accepted" validate:"required"`
}

func (s *Server) handleAnalyze(c echo.Context) error {
	var in scoring.ProfileInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	profile, err := in.Profile()
	if err != nil {
		return s.errorJSON(c, err)
	}

	score, err := s.Service.Analyze(c.Request().Context(), c.Param("id"), profile)
	if err != nil {
		return s.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, score)
}

func (s *Server) handleGetAnalysis(c echo.Context) error {
	a, err := s.Service.Analysis(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (s *Server) handleFindMatches(c echo.Context) error {
	matches, err := s.Service.FindMatches(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"track_id": c.Param("id"),
		"matches":  matches,
		"total":    len(matches),
	})
}

func (s *Server) handleSubmit(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := requestValidator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "opportunity_ids must list between 1 and 50 ids"})
	}

	results, err := s.Service.Submit(c.Request().Context(), c.Param("id"), req.OpportunityIDs)
	if err != nil {
		return s.errorJSON(c, err)
	}

	submitted := 0
	for _, r := range results {
		if r.Error == "" {
			submitted++
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"submissions": results,
		"message":     fmt.Sprintf("Successfully submitted to %d opportunities", submitted),
		"next_steps":  service.NextSteps(results),
	})
}

func (s *Server) handleListOpportunities(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	opps, err := s.Service.ListOpportunities(c.Request().Context(), f)
	if err != nil {
		return s.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"opportunities": opps,
		"total":         len(opps),
	})
}

// parseFilter reads the list query parameters. Unparsable numbers are
// ignored the same way limit/offset are.
func parseFilter(c echo.Context) (catalog.Filter, error) {
	var f catalog.Filter
	if v := strings.TrimSpace(c.QueryParam("category")); v != "" {
		cat, err := models.ParseCategory(v)
		if err != nil {
			return f, err
		}
		f.Category = cat
	}
	if v := strings.TrimSpace(c.QueryParam("status")); v != "" {
		f.Status = models.Status(strings.ToLower(v))
	}
	if v, err := strconv.ParseInt(c.QueryParam("min_budget"), 10, 64); err == nil && v > 0 {
		f.MinBudget = v
	}
	if v, err := strconv.ParseInt(c.QueryParam("max_budget"), 10, 64); err == nil && v > 0 {
		f.MaxBudget = v
	}
	f.Urgent = strings.EqualFold(c.QueryParam("urgent"), "true")
	f.HighValue = strings.EqualFold(c.QueryParam("high_value"), "true")
	return f, nil
}

func (s *Server) handleGetOpportunity(c echo.Context) error {
	opp, err := s.Service.Opportunity(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, opp)
}

func (s *Server) handleInsights(c echo.Context) error {
	in, err := s.Service.Insights(c.Request().Context())
	if err != nil {
		return s.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, in)
}

func (s *Server) handleSubmissionStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Service.SubmissionStats())
}

func (s *Server) handleDecision(c echo.Context) error {
	var req decisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := requestValidator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "accepted is required"})
	}

	opp, err := s.Service.Decide(c.Request().Context(), c.Param("id"), *req.Accepted)
	if err != nil {
		return s.errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, opp)
}

func (s *Server) handleSeed(c echo.Context) error {
	if s.seeder == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "no seed source configured"})
	}
	ctx := c.Request().Context()

	count, err := s.Service.Seed(ctx, s.seeder)
	if err != nil {
		return s.errorJSON(c, err)
	}

	if s.seedSink != nil {
		opps, err := s.Service.ListOpportunities(ctx, catalog.Filter{})
		if err != nil {
			return s.errorJSON(c, err)
		}
		if err := s.seedSink.SaveOpportunities(ctx, opps); err != nil {
			logging.Ctx(ctx).Error().Err(err).Msg("failed to persist seeded opportunities")
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Seed complete",
		"count":   count,
	})
}

// errorJSON maps service errors to status codes.
func (s *Server) errorJSON(c echo.Context, err error) error {
	var pe *scoring.ProfileError
	switch {
	case errors.As(err, &pe):
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":  scoring.ErrInvalidProfile.Error(),
			"fields": pe.Violations,
		})
	case errors.Is(err, scoring.ErrInvalidProfile), errors.Is(err, service.ErrMissingTrackID):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrNotAnalyzed):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, catalog.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	case errors.Is(err, catalog.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "request cancelled"})
	}

	logging.Ctx(c.Request().Context()).Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
}
