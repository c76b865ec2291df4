package models

import "time"

// EvaluationRecord is the outcome of one interview evaluation. The transcript is never stored.
type EvaluationRecord struct {
	ID             string    `db:"id"              json:"id"`
	InterviewType  string    `db:"interview_type"  json:"interview_type"`
	Variant        string    `db:"variant"         json:"variant"`
	OverallScore   float64   `db:"overall_score"   json:"overall_score"`
	Degraded       bool      `db:"degraded"        json:"degraded"`
	DegradedReason string    `db:"degraded_reason" json:"degraded_reason,omitempty"`
	Created        time.Time `db:"created"         json:"created"`
}

// EvaluationStats aggregates the recorded evaluations.
type EvaluationStats struct {
	Total        int     `db:"total"         json:"total"`
	Degraded     int     `db:"degraded"      json:"degraded"`
	AverageScore float64 `db:"average_score" json:"average_score"`
}
