package mapper

import (
	"encoding/json"

	"ai-permit-planner-be/internal/entity"
	"ai-permit-planner-be/internal/model"
	"ai-permit-planner-be/pkg/debate"
)

type RunMapper struct{}

func NewRunMapper() *RunMapper {
	return &RunMapper{}
}

func (m *RunMapper) ToEntity(r *model.PipelineRun) (*entity.RunRecord, error) {
	if r == nil {
		return nil, nil
	}

	var result map[string]any
	if len(r.Result) > 0 {
		if err := json.Unmarshal(r.Result, &result); err != nil {
			return nil, err
		}
	}

	var messages []debate.Message
	if len(r.Debate) > 0 {
		if err := json.Unmarshal(r.Debate, &messages); err != nil {
			return nil, err
		}
	}

	return &entity.RunRecord{
		Id:           r.Id,
		SessionId:    r.SessionId,
		RequesterId:  r.RequesterId,
		Request:      r.Request,
		Pipeline:     r.Pipeline,
		Result:       result,
		Debate:       messages,
		FallbackUsed: r.FallbackUsed,
		CompletedAt:  r.CompletedAt,
		CreatedAt:    r.CreatedAt,
	}, nil
}

func (m *RunMapper) ToModel(r *entity.RunRecord) (*model.PipelineRun, error) {
	if r == nil {
		return nil, nil
	}

	result, err := json.Marshal(r.Result)
	if err != nil {
		return nil, err
	}

	var messages []byte
	if len(r.Debate) > 0 {
		messages, err = json.Marshal(r.Debate)
		if err != nil {
			return nil, err
		}
	}

	return &model.PipelineRun{
		Id:           r.Id,
		SessionId:    r.SessionId,
		RequesterId:  r.RequesterId,
		Request:      r.Request,
		Pipeline:     r.Pipeline,
		Result:       result,
		Debate:       messages,
		FallbackUsed: r.FallbackUsed,
		CompletedAt:  r.CompletedAt,
		CreatedAt:    r.CreatedAt,
	}, nil
}

func (m *RunMapper) ToEntities(runs []*model.PipelineRun) ([]*entity.RunRecord, error) {
	out := make([]*entity.RunRecord, 0, len(runs))
	for _, r := range runs {
		e, err := m.ToEntity(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
