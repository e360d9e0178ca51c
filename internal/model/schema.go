package model

import "time"

// Schema is an ordered collection of question groups bound to projects.
// Name is unique across the catalog.
type Schema struct {
	ID               string    `json:"id" bson:"_id,omitempty"`
	Name             string    `json:"name" bson:"name"`
	QuestionGroupIDs []string  `json:"questionGroupIds" bson:"questionGroupIds"`
	IsArchived       bool      `json:"isArchived" bson:"isArchived"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" bson:"updatedAt"`
}

// HasGroup reports whether the schema references the given group id.
func (s *Schema) HasGroup(groupID string) bool {
	for _, id := range s.QuestionGroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}
