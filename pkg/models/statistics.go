package models

// Statistics summarises a learner's list.
type Statistics struct {
	LearnerID int64       `json:"learner_id"`
	Total     int         `json:"total"`
	Due       int         `json:"due"`
	ByLevel   map[int]int `json:"by_level"`
}
