package implementation

import (
	"context"
	"errors"

	"ai-permit-planner-be/internal/entity"
	"ai-permit-planner-be/internal/mapper"
	"ai-permit-planner-be/internal/model"
	"ai-permit-planner-be/internal/repository/contract"
	"ai-permit-planner-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RunRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RunMapper
}

func NewRunRepository(db *gorm.DB) contract.RunRepository {
	return &RunRepositoryImpl{
		db:     db,
		mapper: mapper.NewRunMapper(),
	}
}

func (r *RunRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Save inserts the run. An earlier record with the same session id is
// replaced only when it belongs to the same requester.
func (r *RunRepositoryImpl) Save(ctx context.Context, run *entity.RunRecord) error {
	m, err := r.mapper.ToModel(run)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		Where:     clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "pipeline_runs.requester_id = excluded.requester_id"}}},
		DoUpdates: clause.AssignmentColumns([]string{"request", "pipeline", "result", "debate", "fallback_used", "completed_at"}),
	}).Create(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return contract.ErrSessionTaken
	}
	saved, err := r.mapper.ToEntity(m)
	if err != nil {
		return err
	}
	*run = *saved
	return nil
}

func (r *RunRepositoryImpl) FindBySessionId(ctx context.Context, sessionId string) (*entity.RunRecord, error) {
	var m model.PipelineRun
	query := r.applySpecifications(r.db.WithContext(ctx), specification.BySessionID{SessionID: sessionId})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *RunRepositoryImpl) FindAllByRequester(ctx context.Context, requesterId string, limit int) ([]*entity.RunRecord, error) {
	var models []*model.PipelineRun
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByRequesterID{RequesterID: requesterId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models)
}
