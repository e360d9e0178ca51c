package model

import "time"

// QuestionType defines how a question is answered
type QuestionType string

const (
	QuestionTypeSingle      QuestionType = "single"      // One option from a fixed set
	QuestionTypeDescription QuestionType = "description" // Free text, reviewer-resolved
)

// Question is a catalog question. Text is its identity and never changes after
// creation; options are only ever appended, never removed.
type Question struct {
	ID            string       `json:"id" bson:"_id,omitempty"`
	Text          string       `json:"text" bson:"text"`
	DisplayText   string       `json:"displayText" bson:"displayText"`
	Type          QuestionType `json:"type" bson:"type"`
	Options       []string     `json:"options,omitempty" bson:"options,omitempty"`
	DisplayValues []string     `json:"displayValues,omitempty" bson:"displayValues,omitempty"`
	OptionWeights []float64    `json:"optionWeights,omitempty" bson:"optionWeights,omitempty"`
	DefaultOption string       `json:"defaultOption,omitempty" bson:"defaultOption,omitempty"`
	IsArchived    bool         `json:"isArchived" bson:"isArchived"`
	CreatedAt     time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// HasOption reports whether value is a member of the current option set.
func (q *Question) HasOption(value string) bool {
	for _, opt := range q.Options {
		if opt == value {
			return true
		}
	}
	return false
}

// OptionWeight returns the weight configured for the given option value.
// Unknown options and unset weights count as 1.0.
func (q *Question) OptionWeight(value string) float64 {
	for i, opt := range q.Options {
		if opt != value {
			continue
		}
		if i < len(q.OptionWeights) && q.OptionWeights[i] > 0 {
			return q.OptionWeights[i]
		}
		return 1.0
	}
	return 1.0
}
