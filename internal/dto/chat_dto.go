package dto

import (
	"time"

	"github.com/google/uuid"
)

type AskRequest struct {
	Question string `json:"question" validate:"required,min=3"`
}

type CitationDTO struct {
	CaseId string  `json:"case_id"`
	Title  string  `json:"title"`
	Court  string  `json:"court,omitempty"`
	Date   string  `json:"date,omitempty"`
	Url    string  `json:"url,omitempty"`
	Score  float32 `json:"score"`
	Rank   int     `json:"rank"`
}

type AskResponse struct {
	Id             uuid.UUID     `json:"id"`
	Answer         string        `json:"answer"`
	Citations      []CitationDTO `json:"citations"`
	PrecedentFound bool          `json:"precedent_found"`
	Fallback       bool          `json:"fallback"`
	Model          string        `json:"model,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
}

type SearchResultDTO struct {
	CaseId   string  `json:"case_id"`
	Title    string  `json:"title"`
	Court    string  `json:"court,omitempty"`
	Date     string  `json:"date,omitempty"`
	Url      string  `json:"url,omitempty"`
	Category string  `json:"category,omitempty"`
	Score    float32 `json:"score"`
	Rank     int     `json:"rank"`
}

type HealthResponse struct {
	Status       string `json:"status"`
	IndexedCases int    `json:"indexed_cases"`
}
