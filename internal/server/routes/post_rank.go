package routes

import (
	"encoding/json"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"

	"github.com/OFFIS-RIT/kiwi-persona/internal/config"
	"github.com/OFFIS-RIT/kiwi-persona/internal/pipeline"
	"github.com/OFFIS-RIT/kiwi-persona/internal/queue"
	"github.com/OFFIS-RIT/kiwi-persona/internal/server/middleware"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/logger"
)

// RankHandler ranks the configured document collection and responds with
// the output record.
func RankHandler(c echo.Context) error {
	type rankData struct {
		Persona     string `json:"persona"`
		JobToBeDone string `json:"job_to_be_done"`
		TopK        int    `json:"top_k" validate:"min=0"`
	}

	data := new(rankData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	persona := config.Persona{Persona: data.Persona, JobToBeDone: data.JobToBeDone}.WithDefaults()
	topK := data.TopK
	if topK == 0 {
		topK = app.TopK
	}

	out, err := app.Runner.Run(c.Request().Context(), app.Source, pipeline.Request{
		Persona:     persona.Persona,
		JobToBeDone: persona.JobToBeDone,
		TopK:        topK,
	})
	if err != nil {
		logger.Error("[Server] Ranking failed", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return pipeline.EncodeOutput(c.Response(), out)
}

// EnqueueRankHandler publishes a ranking job for documents stored below an
// object storage prefix.
func EnqueueRankHandler(c echo.Context) error {
	type enqueueResponse struct {
		Message   string `json:"message"`
		OutputKey string `json:"output_key,omitempty"`
	}

	data := new(queue.RankJobMsg)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, enqueueResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, enqueueResponse{Message: "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	if app.Queue == nil {
		return c.JSON(http.StatusServiceUnavailable, enqueueResponse{Message: "Job queue not configured"})
	}

	if data.OutputKey == "" {
		data.OutputKey = path.Join(data.InputPrefix, pipeline.OutputFile)
	}

	body, err := json.Marshal(data)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, enqueueResponse{Message: "Internal server error"})
	}
	if err := queue.PublishFIFO(app.Queue, queue.RankQueue, body); err != nil {
		logger.Error("[Server] Failed to enqueue rank job", "err", err)
		return c.JSON(http.StatusInternalServerError, enqueueResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusAccepted, enqueueResponse{
		Message:   "Rank job queued",
		OutputKey: data.OutputKey,
	})
}
