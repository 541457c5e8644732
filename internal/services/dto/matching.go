package dto

import "tradematch_backend/internal/models"

// TierMatches partitions matched tradespeople by subscription tier. The
// buckets are disjoint; every member passed both the area and the specialty
// match.
type TierMatches struct {
	Business []models.User `json:"business"`
	Pro      []models.User `json:"pro"`
	Basic    []models.User `json:"basic"`
}

func (m *TierMatches) All() []models.User {
	all := make([]models.User, 0, len(m.Business)+len(m.Pro)+len(m.Basic))
	all = append(all, m.Business...)
	all = append(all, m.Pro...)
	all = append(all, m.Basic...)
	return all
}

func (m *TierMatches) IsEmpty() bool {
	return len(m.Business) == 0 && len(m.Pro) == 0 && len(m.Basic) == 0
}
