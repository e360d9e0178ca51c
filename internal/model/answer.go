package model

import "time"

// Answer is one submission row. Annotator rows are keyed by
// (video, question, project, user); the ground-truth row drops the user
// dimension and is flagged with IsGroundTruth. Rows are upserted, never
// duplicated, and never physically deleted.
type Answer struct {
	ID            string `json:"id" bson:"_id,omitempty"`
	VideoID       string `json:"videoId" bson:"videoId"`
	QuestionID    string `json:"questionId" bson:"questionId"`
	ProjectID     string `json:"projectId" bson:"projectId"`
	UserID        string `json:"userId,omitempty" bson:"userId,omitempty"`
	IsGroundTruth bool   `json:"isGroundTruth" bson:"isGroundTruth"`
	Value         string `json:"value" bson:"value"`
	// ConfidenceScore is meaningful for model users only.
	ConfidenceScore *float64 `json:"confidenceScore,omitempty" bson:"confidenceScore,omitempty"`
	Notes           string   `json:"notes,omitempty" bson:"notes,omitempty"`
	// ReviewerID is the reviewer of the initial ground-truth commit and is
	// never changed afterwards. AttributedTo tracks the last writer
	// (reviewer or overriding admin).
	ReviewerID   string    `json:"reviewerId,omitempty" bson:"reviewerId,omitempty"`
	AttributedTo string    `json:"attributedTo,omitempty" bson:"attributedTo,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// OverrideEntry is one append-only record of an admin replacing a committed
// ground-truth value. The log is the substrate for reviewer accuracy.
type OverrideEntry struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	AnswerID      string    `json:"answerId" bson:"answerId"`
	AdminID       string    `json:"adminId" bson:"adminId"`
	VideoID       string    `json:"videoId" bson:"videoId"`
	QuestionID    string    `json:"questionId" bson:"questionId"`
	ProjectID     string    `json:"projectId" bson:"projectId"`
	PreviousValue string    `json:"previousValue" bson:"previousValue"`
	NewValue      string    `json:"newValue" bson:"newValue"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

// ReviewStatus is a reviewer's verdict on an annotator answer.
type ReviewStatus string

const (
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Review is an approve/reject decision layered on an annotator answer. It
// never mutates the answer itself.
type Review struct {
	ID         string       `json:"id" bson:"_id,omitempty"`
	AnswerID   string       `json:"answerId" bson:"answerId"`
	ProjectID  string       `json:"projectId" bson:"projectId"`
	ReviewerID string       `json:"reviewerId" bson:"reviewerId"`
	Status     ReviewStatus `json:"status" bson:"status"`
	Comment    string       `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt  time.Time    `json:"createdAt" bson:"createdAt"`
}

// QuestionFeedback is the per-question correctness echo returned for
// submissions made while a project is in training mode.
type QuestionFeedback struct {
	QuestionText string `json:"questionText"`
	Correct      bool   `json:"correct"`
	GroundTruth  string `json:"groundTruth"`
}

// SubmitResult reports the project mode at submission time plus training
// feedback when the mode is training.
type SubmitResult struct {
	Mode     ProjectMode        `json:"mode"`
	Feedback []QuestionFeedback `json:"feedback,omitempty"`
}
