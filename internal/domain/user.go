package domain

import "time"

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

type User struct {
	ID        string
	Email     string
	Plan      Plan
	CreatedAt time.Time
	UpdatedAt time.Time
}
