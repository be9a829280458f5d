package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PipelineRun stores the outcome of one finished pipeline run.
type PipelineRun struct {
	Id           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SessionId    string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"session_id"`
	RequesterId  string         `gorm:"type:varchar(64);index:idx_pipeline_runs_requester_created,priority:1" json:"requester_id"`
	Request      string         `gorm:"type:text;not null" json:"request"`
	Pipeline     string         `gorm:"type:varchar(20);not null" json:"pipeline"`
	Result       datatypes.JSON `gorm:"type:jsonb;not null" json:"result"`
	Debate       datatypes.JSON `gorm:"type:jsonb" json:"debate,omitempty"`
	FallbackUsed bool           `gorm:"default:false" json:"fallback_used"`
	CompletedAt  time.Time      `json:"completed_at"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index:idx_pipeline_runs_requester_created,priority:2" json:"created_at"`
}

func (PipelineRun) TableName() string {
	return "pipeline_runs"
}
