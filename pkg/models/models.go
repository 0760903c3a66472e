package models

// Trigger is a keyword the chatbot matches against. It owns zero or more Jokes.
type Trigger struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Value string `gorm:"uniqueIndex;not null" json:"value"`
	Jokes []Joke `gorm:"foreignKey:TriggerID" json:"jokes"`
}

// Joke is a canned response associated with a Trigger.
type Joke struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	TriggerID uint   `gorm:"not null;index" json:"trigger_id"`
	Text      string `gorm:"not null" json:"text"`
}

// StandaloneJoke is a response that is not tied to any trigger ("jokes-x").
type StandaloneJoke struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Text string `gorm:"not null" json:"text"`
}

// TableName keeps the table name aligned with the jokes-x resource.
func (StandaloneJoke) TableName() string { return "jokes_x" }

// RecordID implements listview.Record.
func (t Trigger) RecordID() uint { return t.ID }

// DisplayText implements listview.Record.
func (t Trigger) DisplayText() string { return t.Value }

func (j Joke) RecordID() uint { return j.ID }

func (j Joke) DisplayText() string { return j.Text }

func (j StandaloneJoke) RecordID() uint { return j.ID }

func (j StandaloneJoke) DisplayText() string { return j.Text }

// CreateTriggerRequest is the body of POST /api/triggers.
type CreateTriggerRequest struct {
	Value string `json:"value" binding:"required"`
}

// CreateJokeRequest is the body of POST /api/triggers/:id/jokes and POST /api/jokes-x.
type CreateJokeRequest struct {
	Text string `json:"text" binding:"required"`
}
