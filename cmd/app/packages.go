package main

import (
	"time"

	"github.com/google/uuid"

	"botdash/internal/domain"
)

// defaultPackages mirrors the rows seeded by the initial migration so the
// in-memory store offers the same plans
func defaultPackages() []*domain.Package {
	now := time.Now()
	return []*domain.Package{
		{ID: uuid.MustParse("7b0c1a52-3f0e-4c3a-9d55-1c1f3b6a0001"), Name: "Premium Monthly", Price: 49, DurationDays: 30, Plan: domain.PlanPremium, CreatedAt: now},
		{ID: uuid.MustParse("7b0c1a52-3f0e-4c3a-9d55-1c1f3b6a0002"), Name: "Premium Yearly", Price: 490, DurationDays: 365, Plan: domain.PlanPremium, CreatedAt: now},
		{ID: uuid.MustParse("7b0c1a52-3f0e-4c3a-9d55-1c1f3b6a0003"), Name: "Prop Monthly", Price: 149, DurationDays: 30, Plan: domain.PlanProp, CreatedAt: now},
	}
}
