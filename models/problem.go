package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProblemCategory enum. The keys are the wire values the mobile and web
// clients send; the labels are only for display.
type ProblemCategory string

const (
	Road           ProblemCategory = "1"
	Waste          ProblemCategory = "2"
	Building       ProblemCategory = "3"
	Infrastructure ProblemCategory = "4"
	Water          ProblemCategory = "5"
)

// CategoryLabels maps category keys to human-readable names.
var CategoryLabels = map[ProblemCategory]string{
	Road:           "Road",
	Waste:          "Waste",
	Building:       "Building",
	Infrastructure: "Infrastructure",
	Water:          "Water",
}

func (c ProblemCategory) Valid() bool {
	_, ok := CategoryLabels[c]
	return ok
}

// ProblemStatus enum
type ProblemStatus string

const (
	Reported   ProblemStatus = "reported"
	InProgress ProblemStatus = "in-progress"
	Resolved   ProblemStatus = "resolved"
)

func (s ProblemStatus) Valid() bool {
	switch s {
	case Reported, InProgress, Resolved:
		return true
	}
	return false
}

// Location is the human-readable address plus coordinates of a problem.
// All three fields are required at creation time.
type Location struct {
	Address string  `bson:"address" json:"address"`
	Lat     float64 `bson:"lat" json:"lat"`
	Lng     float64 `bson:"lng" json:"lng"`
}

// Update is an append-only annotation on a problem. Updates are embedded in
// the parent problem document and never reordered or deleted.
type Update struct {
	ID        string    `bson:"id" json:"id"`
	Content   string    `bson:"content" json:"content"`
	Author    string    `bson:"author" json:"author"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Problem represents a civic issue reported by a citizen
type Problem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    ProblemCategory    `bson:"category" json:"category"`
	Status      ProblemStatus      `bson:"status" json:"status"`
	Location    Location           `bson:"location" json:"location"`
	Images      []string           `bson:"images" json:"images"`
	ReportedBy  primitive.ObjectID `bson:"reportedBy" json:"reportedBy"`
	Upvotes     int64              `bson:"upvotes" json:"upvotes"`
	Updates     []Update           `bson:"updates" json:"updates"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
