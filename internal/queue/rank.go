package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/OFFIS-RIT/kiwi-persona/internal/config"
	"github.com/OFFIS-RIT/kiwi-persona/internal/pipeline"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/logger"

	"github.com/go-playground/validator"
)

// RankJobMsg is the body of a RankQueue message. OutputKey defaults to the
// result file name below InputPrefix; empty persona and job fall back to the
// configured defaults.
type RankJobMsg struct {
	InputPrefix string `json:"input_prefix" validate:"required"`
	OutputKey   string `json:"output_key"`
	Persona     string `json:"persona"`
	JobToBeDone string `json:"job_to_be_done"`
	TopK        int    `json:"top_k" validate:"min=0"`
}

// RankResultMsg is published on ResultTopic when a job succeeded.
type RankResultMsg struct {
	InputPrefix string `json:"input_prefix"`
	OutputKey   string `json:"output_key"`
	Documents   int    `json:"documents"`
	Sections    int    `json:"sections"`
}

// Runner runs one ranking pass over a document source.
type Runner interface {
	Run(ctx context.Context, source loader.DocumentSource, req pipeline.Request) (pipeline.Output, error)
}

// Sink stores result files.
type Sink interface {
	PutFile(ctx context.Context, key string, body []byte) error
}

// RankHandler processes RankQueue messages.
//
// A RankHandler should be created using NewRankHandler.
type RankHandler struct {
	runner    Runner
	sources   func(prefix string) loader.DocumentSource
	sink      Sink
	publisher Publisher
	topK      int
	validate  *validator.Validate
}

// NewRankHandlerParams defines the collaborators of a RankHandler.
//
// Sources returns the document source below a job's input prefix.
// Publisher is optional; when set, a RankResultMsg is published after
// every successful job. TopK is used for jobs that do not set one.
type NewRankHandlerParams struct {
	Runner    Runner
	Sources   func(prefix string) loader.DocumentSource
	Sink      Sink
	Publisher Publisher
	TopK      int
}

// NewRankHandler creates a RankHandler.
func NewRankHandler(params NewRankHandlerParams) *RankHandler {
	return &RankHandler{
		runner:    params.Runner,
		sources:   params.Sources,
		sink:      params.Sink,
		publisher: params.Publisher,
		topK:      params.TopK,
		validate:  validator.New(),
	}
}

// ProcessRankMessage ranks the documents below the job's input prefix and
// stores the result at its output key.
func (h *RankHandler) ProcessRankMessage(ctx context.Context, body []byte) error {
	var job RankJobMsg
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("failed to decode rank job: %w", err)
	}
	if err := h.validate.Struct(job); err != nil {
		return fmt.Errorf("invalid rank job: %w", err)
	}

	persona := config.Persona{Persona: job.Persona, JobToBeDone: job.JobToBeDone}.WithDefaults()
	topK := job.TopK
	if topK == 0 {
		topK = h.topK
	}
	outputKey := job.OutputKey
	if outputKey == "" {
		outputKey = path.Join(job.InputPrefix, pipeline.OutputFile)
	}

	logger.Info("[Queue] Ranking documents", "prefix", job.InputPrefix, "output", outputKey)

	out, err := h.runner.Run(ctx, h.sources(job.InputPrefix), pipeline.Request{
		Persona:     persona.Persona,
		JobToBeDone: persona.JobToBeDone,
		TopK:        topK,
	})
	if err != nil {
		return fmt.Errorf("failed to rank %s: %w", job.InputPrefix, err)
	}

	buf := new(bytes.Buffer)
	if err := pipeline.EncodeOutput(buf, out); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if err := h.sink.PutFile(ctx, outputKey, buf.Bytes()); err != nil {
		return err
	}

	if h.publisher == nil {
		return nil
	}
	result, err := json.Marshal(RankResultMsg{
		InputPrefix: job.InputPrefix,
		OutputKey:   outputKey,
		Documents:   len(out.Metadata.Documents),
		Sections:    len(out.RankedSections),
	})
	if err != nil {
		return err
	}
	if err := PublishTopic(h.publisher, ResultTopic, result); err != nil {
		// The result is already stored.
		logger.Error("[Queue] Failed to publish result", "output", outputKey, "err", err)
	}
	return nil
}
