package model

import "time"

// Role is a per-project grant held through an Assignment.
type Role string

const (
	RoleAnnotator Role = "annotator"
	RoleReviewer  Role = "reviewer"
	RoleAdmin     Role = "admin"
	RoleModel     Role = "model"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAnnotator, RoleReviewer, RoleAdmin, RoleModel:
		return true
	}
	return false
}

// ProjectMode is the derived lifecycle state of a project.
type ProjectMode string

const (
	ModeAnnotation ProjectMode = "annotation"
	ModeTraining   ProjectMode = "training"
)

// Assignment grants a user a role on a project. Weight scales a human
// annotator's consensus vote; zero means the default 1.0.
type Assignment struct {
	UserID    string    `json:"userId" bson:"userId"`
	Role      Role      `json:"role" bson:"role"`
	Weight    float64   `json:"weight,omitempty" bson:"weight,omitempty"`
	GrantedAt time.Time `json:"grantedAt" bson:"grantedAt"`
}

// VoteWeight returns the assignment weight with the 1.0 default applied.
func (a *Assignment) VoteWeight() float64 {
	if a.Weight > 0 {
		return a.Weight
	}
	return 1.0
}

// ProjectVideo is a clip enrolled in a project. Archival hides the clip from
// new submissions and from the mode completeness check without deleting its
// answer history.
type ProjectVideo struct {
	VideoID    string `json:"videoId" bson:"videoId"`
	IsArchived bool   `json:"isArchived" bson:"isArchived"`
}

// Project binds a schema and a video set, and owns the role assignments.
// Name is unique. Mode is recomputed after ground-truth writes and archival.
type Project struct {
	ID          string         `json:"id" bson:"_id,omitempty"`
	Name        string         `json:"name" bson:"name"`
	SchemaID    string         `json:"schemaId" bson:"schemaId"`
	Videos      []ProjectVideo `json:"videos" bson:"videos"`
	Assignments []Assignment   `json:"assignments" bson:"assignments"`
	Mode        ProjectMode    `json:"mode" bson:"mode"`
	IsArchived  bool           `json:"isArchived" bson:"isArchived"`
	CreatedAt   time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// AssignmentFor returns the user's assignment, or nil when none exists.
func (p *Project) AssignmentFor(userID string) *Assignment {
	for i := range p.Assignments {
		if p.Assignments[i].UserID == userID {
			return &p.Assignments[i]
		}
	}
	return nil
}

// HasVideo reports whether the project contains the video, archived or not.
func (p *Project) HasVideo(videoID string) bool {
	for _, v := range p.Videos {
		if v.VideoID == videoID {
			return true
		}
	}
	return false
}

// VideoActive reports whether the video is enrolled and not archived.
func (p *Project) VideoActive(videoID string) bool {
	for _, v := range p.Videos {
		if v.VideoID == videoID {
			return !v.IsArchived
		}
	}
	return false
}

// ActiveVideoIDs returns the ids of all non-archived videos.
func (p *Project) ActiveVideoIDs() []string {
	ids := make([]string, 0, len(p.Videos))
	for _, v := range p.Videos {
		if !v.IsArchived {
			ids = append(ids, v.VideoID)
		}
	}
	return ids
}
