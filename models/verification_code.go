package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CodeTTL is how long a registration code stays valid. A code older than
// this is treated the same as a code that was never issued.
const CodeTTL = 10 * time.Minute

// VerificationCode is a single-use 6-digit code gating account creation.
// At most one live code exists per email: issuing a new one replaces any
// prior code, and successful verification deletes the record.
type VerificationCode struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Email     string             `bson:"email" json:"email"`
	Code      string             `bson:"code" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Expired reports whether the code is past its validity window.
func (v *VerificationCode) Expired(now time.Time) bool {
	return now.Sub(v.CreatedAt) > CodeTTL
}
