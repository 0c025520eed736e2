package domain

import "github.com/shopspring/decimal"

// PipelineStage represents the stage of a fundraising opportunity
type PipelineStage string

// Pipeline stages. Awarded/ClosedWon and Declined/ClosedLost are synonyms
// kept separate because both spellings appear in imported pipeline data.
const (
	StageResearch   PipelineStage = "research"
	StageQualify    PipelineStage = "qualify"
	StageLOI        PipelineStage = "loi"
	StageInvited    PipelineStage = "invited"
	StageInProgress PipelineStage = "in_progress"
	StageSubmitted  PipelineStage = "submitted"
	StageAwarded    PipelineStage = "awarded"
	StageClosedWon  PipelineStage = "closed_won"
	StageDeclined   PipelineStage = "declined"
	StageClosedLost PipelineStage = "closed_lost"
	StageReported   PipelineStage = "reported"
)

// IsWon reports whether the stage denotes a closed-won outcome
func (s PipelineStage) IsWon() bool {
	switch s {
	case StageAwarded, StageClosedWon, StageReported:
		return true
	}
	return false
}

// IsLost reports whether the stage denotes a closed-lost outcome
func (s PipelineStage) IsLost() bool {
	switch s {
	case StageDeclined, StageClosedLost:
		return true
	}
	return false
}

// IsClosed reports whether the opportunity has reached a terminal outcome
func (s PipelineStage) IsClosed() bool {
	return s.IsWon() || s.IsLost()
}

// ValidPipelineStage reports whether s is one of the known stages
func ValidPipelineStage(s PipelineStage) bool {
	switch s {
	case StageResearch, StageQualify, StageLOI, StageInvited, StageInProgress,
		StageSubmitted, StageAwarded, StageClosedWon, StageDeclined, StageClosedLost, StageReported:
		return true
	}
	return false
}

// AwardType partitions secured funding for reporting
type AwardType string

// Award types
const (
	AwardRestricted   AwardType = "restricted"
	AwardUnrestricted AwardType = "unrestricted"
)

// ValidAwardType reports whether a is one of the known award types
func ValidAwardType(a AwardType) bool {
	return a == AwardRestricted || a == AwardUnrestricted
}

// FundraisingOpportunity represents one record in the fundraising pipeline.
// AmountAwarded is non-zero only when the stage is closed-won.
type FundraisingOpportunity struct {
	ID            string
	Funder        string
	Stage         PipelineStage
	AskAmount     decimal.Decimal
	AmountAwarded decimal.Decimal
	AwardType     AwardType
}
