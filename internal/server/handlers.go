package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"deck-recommender/internal/format"
	"deck-recommender/internal/request"
	"deck-recommender/internal/utils"
	"deck-recommender/pkg/deck"
	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
	"deck-recommender/pkg/storage"
)

type ResponseError struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

type recommendResponse struct {
	ID         string         `json:"id"`
	Name       string         `json:"name,omitempty"`
	DurationMs int64          `json:"durationMs"`
	Decks      []*deck.Detail `json:"decks"`
	Text       string         `json:"text,omitempty"`
}

// statusOf maps an error kind to an HTTP status.
func statusOf(err error) int {
	switch errs.Kind(err) {
	case "config":
		return http.StatusBadRequest
	case "data":
		return http.StatusUnprocessableEntity
	case "exhausted":
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"cards":   len(s.User.Cards),
		"history": s.History != nil,
	})
}

func (s *Server) handleRecommend(c echo.Context) error {
	var req request.Request
	if err := c.Bind(&req); err != nil {
		return err
	}

	timeout := s.Timeout
	if req.TimeoutMs > 0 && time.Duration(req.TimeoutMs)*time.Millisecond < timeout {
		timeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
	defer cancel()

	run, err := request.Execute(ctx, s.Tables, s.User, &req)
	if err != nil {
		utils.Log.WithError(err).Warn("recommend failed")
		return c.JSON(statusOf(err), ResponseError{Message: err.Error(), Kind: errs.Kind(err)})
	}
	run.ID = uuid.NewString()
	if s.History != nil {
		if err := s.History.SaveRun(c.Request().Context(), run); err != nil {
			utils.Log.WithError(err).Error("failed to save run")
			return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
		}
	}

	resp := recommendResponse{
		ID:         run.ID,
		Name:       run.Name,
		DurationMs: run.DurationMs,
		Decks:      run.Decks,
	}
	if c.QueryParam("text") == "1" {
		obj, _ := enums.ParseObjective(req.Objective)
		resp.Text = format.FormatResult(run.Decks, obj)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListRuns(c echo.Context) error {
	if s.History == nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "history is disabled"})
	}
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid limit"})
		}
		limit = n
	}
	runs, err := s.History.ListRuns(c.Request().Context(), limit)
	if err != nil {
		utils.Log.WithError(err).Error("failed to list runs")
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"runs": runs,
	})
}

func (s *Server) handleGetRun(c echo.Context) error {
	if s.History == nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "history is disabled"})
	}
	run, err := s.History.GetRun(c.Request().Context(), c.Param("id"))
	if errors.Is(err, storage.ErrRunNotFound) {
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	return c.JSON(http.StatusOK, run)
}
