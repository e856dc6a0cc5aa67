package model

// Course is one recommended course or book.
type Course struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Provider string   `json:"provider"`
	Weeks    int      `json:"weeks"`
	Free     bool     `json:"free"`
	Summary  string   `json:"summary,omitempty"`
	Syllabus []string `json:"syllabus,omitempty"`
	URL      string   `json:"url,omitempty"`
}

// Recommendation is an append-only record of one recommendation run.
// swagger:model Recommendation
type Recommendation struct {
	BaseModel
	UserID    uint     `gorm:"index" json:"userId"`
	Skill     string   `gorm:"size:255" json:"skill"`
	Level     Level    `gorm:"size:20" json:"level"`
	Courses   []Course `gorm:"type:json;serializer:json" json:"courses"`
	Reasoning string   `gorm:"type:text" json:"reasoning,omitempty"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}
