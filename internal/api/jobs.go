package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleRefresh(c echo.Context) error {
	if s.refresher == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "refresh is not configured"})
	}

	s.jobMu.Lock()
	if s.runningJob != nil && s.runningJob.Status == "running" {
		job := s.runningJob
		s.jobMu.Unlock()
		return c.JSON(http.StatusConflict, map[string]any{
			"error":  "A refresh job is already running",
			"job_id": job.ID,
		})
	}

	// Detached from the request; the job outlives the response.
	jobCtx, jobCancel := context.WithTimeout(
		context.WithoutCancel(c.Request().Context()), 10*time.Minute,
	)

	jobID := uuid.New().String()[:8]
	job := &backgroundJob{
		ID:        jobID,
		Status:    "running",
		StartedAt: time.Now(),
		Cancel:    jobCancel,
	}
	s.runningJob = job
	s.jobMu.Unlock()

	go func() {
		defer jobCancel()
		results := s.refresher.RunOnce(jobCtx)

		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}

		s.jobMu.Lock()
		job.EndedAt = time.Now()
		job.Result = map[string]any{"tasks": results}
		job.Status = "completed"
		if failed > 0 {
			job.Status = "failed"
			job.Error = fmt.Sprintf("%d of %d tasks failed", failed, len(results))
		}
		s.jobMu.Unlock()

		s.log.Info().Str("job_id", jobID).Int("failed", failed).Msg("refresh job finished")
	}()

	return c.JSON(http.StatusAccepted, map[string]any{
		"message": "Refresh job started",
		"job_id":  jobID,
		"poll":    fmt.Sprintf("/api/v1/admin/job/%s", jobID),
	})
}

func (s *Server) handleJobStatus(c echo.Context) error {
	queried := c.Param("id")

	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	job := s.runningJob
	if job == nil || job.ID != queried {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	resp := map[string]any{
		"id":         job.ID,
		"status":     job.Status,
		"started_at": job.StartedAt,
	}
	if !job.EndedAt.IsZero() {
		resp["ended_at"] = job.EndedAt
		resp["duration"] = job.EndedAt.Sub(job.StartedAt).String()
	}
	if job.Result != nil {
		resp["result"] = job.Result
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}
	return c.JSON(http.StatusOK, resp)
}
