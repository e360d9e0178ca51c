package model

import "time"

// QuestionGroup bundles questions that are answered together. Title is unique
// across the catalog.
type QuestionGroup struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Title        string    `json:"title" bson:"title"`
	DisplayTitle string    `json:"displayTitle" bson:"displayTitle"`
	Description  string    `json:"description,omitempty" bson:"description,omitempty"`
	IsReusable   bool      `json:"isReusable" bson:"isReusable"`
	IsAutoSubmit bool      `json:"isAutoSubmit" bson:"isAutoSubmit"`
	// VerificationFunction names a registry predicate run over the group's
	// full answer map at submission time. Empty means no verification.
	VerificationFunction string    `json:"verificationFunction,omitempty" bson:"verificationFunction,omitempty"`
	QuestionIDs          []string  `json:"questionIds" bson:"questionIds"`
	IsArchived           bool      `json:"isArchived" bson:"isArchived"`
	CreatedAt            time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt" bson:"updatedAt"`
}

// HasQuestion reports whether the group contains the given question id.
func (g *QuestionGroup) HasQuestion(questionID string) bool {
	for _, id := range g.QuestionIDs {
		if id == questionID {
			return true
		}
	}
	return false
}
