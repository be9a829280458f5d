package service

import (
	"context"
	"encoding/json"
	"iter"
	"strings"

	"ai-permit-planner-be/internal/dto"
	"ai-permit-planner-be/internal/entity"
	"ai-permit-planner-be/internal/pkg/logger"
	"ai-permit-planner-be/internal/repository/contract"
	"ai-permit-planner-be/pkg/debate"
	"ai-permit-planner-be/pkg/pipeline"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	pipelineModule  = "PIPELINE_SERVICE"
	defaultRunLimit = 20
)

var tracer = otel.Tracer("ai-permit-planner-be/internal/service")

// ErrSessionTaken is returned by Admit for a session id that already holds a
// run of another requester.
var ErrSessionTaken = contract.ErrSessionTaken

// PipelineRunner is the part of pipeline.Runner the service drives.
type PipelineRunner interface {
	Run(ctx context.Context, req pipeline.RunRequest) iter.Seq[pipeline.StreamItem]
}

type IPipelineService interface {
	// Admit normalizes req and rejects it before any output is produced:
	// blank text and session ids owned by another requester.
	Admit(ctx context.Context, req *dto.RunPipelineRequest) error
	// Run drains a run and returns its result with the debate transcript.
	Run(ctx context.Context, req *dto.RunPipelineRequest) (*dto.RunPipelineResponse, error)
	// Stream yields the run's items as they are produced.
	Stream(ctx context.Context, req *dto.RunPipelineRequest) iter.Seq[pipeline.StreamItem]
	GetRun(ctx context.Context, sessionId, requesterId string) (*dto.RunRecordResponse, error)
	ListRuns(ctx context.Context, requesterId string, limit int) ([]*dto.RunRecordResponse, error)
}

type pipelineService struct {
	runner    PipelineRunner
	runRepo   contract.RunRepository
	publisher IPublisherService
	logger    logger.ILogger
}

func NewPipelineService(
	runner PipelineRunner,
	runRepo contract.RunRepository,
	publisher IPublisherService,
	log logger.ILogger,
) IPipelineService {
	return &pipelineService{
		runner:    runner,
		runRepo:   runRepo,
		publisher: publisher,
		logger:    log,
	}
}

func (s *pipelineService) Stream(ctx context.Context, req *dto.RunPipelineRequest) iter.Seq[pipeline.StreamItem] {
	return func(yield func(pipeline.StreamItem) bool) {
		ctx, span := tracer.Start(ctx, "pipeline.run")
		defer span.End()
		span.SetAttributes(
			attribute.Int("request.length", len(req.Text)),
			attribute.Bool("request.persist", req.Persist),
		)

		var transcript []debate.Message
		runReq := pipeline.RunRequest{
			Text:        req.Text,
			RequesterID: req.RequesterId,
			SessionID:   req.SessionId,
		}
		for item := range s.runner.Run(ctx, runReq) {
			switch item.Kind {
			case pipeline.KindDebate:
				transcript = append(transcript, *item.Debate)
			case pipeline.KindComplete:
				span.SetAttributes(
					attribute.String("session.id", item.Complete.SessionID),
					attribute.String("pipeline.name", item.Complete.Pipeline),
					attribute.String("pipeline.resolution", string(item.Complete.Resolution)),
					attribute.Int("debate.count", len(transcript)),
				)
				// Anonymous runs have no owner who could read them back.
				if req.Persist && req.RequesterId != "" {
					s.persist(ctx, strings.TrimSpace(req.Text), item.Complete, transcript)
				}
			}
			if !yield(item) {
				span.SetStatus(codes.Error, "stream abandoned")
				return
			}
		}
	}
}

func (s *pipelineService) Admit(ctx context.Context, req *dto.RunPipelineRequest) error {
	req.Normalize()
	if req.Text == "" {
		return pipeline.ErrEmptyRequest
	}
	if req.SessionId == "" {
		return nil
	}
	run, err := s.runRepo.FindBySessionId(ctx, req.SessionId)
	if err != nil {
		return err
	}
	if run != nil && run.RequesterId != req.RequesterId {
		s.logger.Warn(pipelineModule, "Rejected run for a session id of another requester", map[string]interface{}{
			"session_id": req.SessionId,
		})
		return ErrSessionTaken
	}
	return nil
}

func (s *pipelineService) Run(ctx context.Context, req *dto.RunPipelineRequest) (*dto.RunPipelineResponse, error) {
	if err := s.Admit(ctx, req); err != nil {
		return nil, err
	}

	var (
		complete   *pipeline.Complete
		transcript = []debate.Message{}
	)
	for item := range s.Stream(ctx, req) {
		switch item.Kind {
		case pipeline.KindDebate:
			transcript = append(transcript, *item.Debate)
		case pipeline.KindComplete:
			complete = item.Complete
		}
	}
	if complete == nil {
		return nil, pipeline.ErrNoCompletion
	}

	return &dto.RunPipelineResponse{
		SessionId:    complete.SessionID,
		RequesterId:  complete.RequesterID,
		Result:       complete.Result,
		Debate:       transcript,
		FallbackUsed: complete.FallbackUsed(),
		CompletedAt:  complete.Timestamp,
	}, nil
}

// persist hands the run to the consumer. A failure here never fails the
// run; the caller already has its result.
func (s *pipelineService) persist(ctx context.Context, request string, c *pipeline.Complete, transcript []debate.Message) {
	msg := dto.PersistRunMessage{
		SessionId:    c.SessionID,
		RequesterId:  c.RequesterID,
		Request:      request,
		Pipeline:     c.Pipeline,
		Result:       c.Result,
		Debate:       transcript,
		FallbackUsed: c.FallbackUsed(),
		CompletedAt:  c.Timestamp,
	}
	payload, err := json.Marshal(msg)
	if err == nil {
		err = s.publisher.Publish(ctx, payload)
	}
	if err != nil {
		s.logger.Error(pipelineModule, "Failed to publish run for persistence", map[string]interface{}{
			"session_id": c.SessionID,
			"error":      err.Error(),
		})
	}
}

func (s *pipelineService) GetRun(ctx context.Context, sessionId, requesterId string) (*dto.RunRecordResponse, error) {
	run, err := s.runRepo.FindBySessionId(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	// Runs of other requesters are reported as missing.
	if run == nil || requesterId == "" || run.RequesterId != requesterId {
		return nil, nil
	}
	return toRunRecordResponse(run), nil
}

func (s *pipelineService) ListRuns(ctx context.Context, requesterId string, limit int) ([]*dto.RunRecordResponse, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}
	runs, err := s.runRepo.FindAllByRequester(ctx, requesterId, limit)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.RunRecordResponse, 0, len(runs))
	for _, run := range runs {
		res = append(res, toRunRecordResponse(run))
	}
	return res, nil
}

func toRunRecordResponse(run *entity.RunRecord) *dto.RunRecordResponse {
	return &dto.RunRecordResponse{
		Id:           run.Id,
		SessionId:    run.SessionId,
		RequesterId:  run.RequesterId,
		Request:      run.Request,
		Pipeline:     run.Pipeline,
		Result:       run.Result,
		Debate:       run.Debate,
		FallbackUsed: run.FallbackUsed,
		CompletedAt:  run.CompletedAt,
		CreatedAt:    run.CreatedAt,
	}
}
