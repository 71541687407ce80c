// internal/workers/intelligence/run-search/handler.go
package runsearch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "intelligence-workers/internal/common/errors"
	"intelligence-workers/internal/common/logger"
	"intelligence-workers/internal/common/validation"
	"intelligence-workers/internal/search/pipeline"
)

const TaskType = "intelligence-search"

type Handler struct {
	config       *Config
	service      *pipeline.Service
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, service *pipeline.Service, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		service:      service,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job",
		map[string]interface{}{
			"jobKey":      job.Key,
			"workflowKey": job.ProcessInstanceKey,
		})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job,
			apperrors.NewInputInvalidError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	if err := h.validateInput(job.Variables); err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) validateInput(rawVariables string) error {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(rawVariables), &data); err != nil {
		return apperrors.NewInputInvalidError(err.Error())
	}

	if err := validation.MustBeValid(data, inputSchema); err != nil {
		return apperrors.NewInputInvalidError(err.Error())
	}
	return nil
}

// Execute runs the search episode. Exported for direct testing.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	resp, err := h.service.Run(ctx, pipeline.Request{
		Query:          input.Query,
		OrganizationID: input.OrganizationID,
		ConversationID: input.ConversationID,
		SearchMode:     input.SearchMode,
		UseCache:       input.UseCache,
	})
	if err != nil {
		return nil, err
	}

	// Round-trip through JSON so the job variables carry the response's
	// wire shape rather than Go struct internals.
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	var result map[string]interface{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	return &Output{SearchResult: result}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
	}
}
