package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "DRAFT"
	CampaignStatusScheduled CampaignStatus = "SCHEDULED"
	CampaignStatusActive    CampaignStatus = "ACTIVE"
	CampaignStatusPaused    CampaignStatus = "PAUSED"
	CampaignStatusCompleted CampaignStatus = "COMPLETED"
	CampaignStatusCancelled CampaignStatus = "CANCELLED"
)

// campaignTransitions holds the allowed forward moves. PAUSED and ACTIVE are
// the only pair that may go back and forth.
var campaignTransitions = map[CampaignStatus][]CampaignStatus{
	CampaignStatusDraft:     {CampaignStatusScheduled, CampaignStatusActive, CampaignStatusCancelled},
	CampaignStatusScheduled: {CampaignStatusActive, CampaignStatusCancelled},
	CampaignStatusActive:    {CampaignStatusPaused, CampaignStatusCompleted, CampaignStatusCancelled},
	CampaignStatusPaused:    {CampaignStatusActive, CampaignStatusCompleted, CampaignStatusCancelled},
}

func (s CampaignStatus) CanTransition(to CampaignStatus) bool {
	for _, next := range campaignTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type Campaign struct {
	ID              string
	Title           string
	Budget          decimal.Decimal
	Spent           decimal.Decimal
	PayoutRate      decimal.Decimal // $ per 1000 views
	Status          CampaignStatus
	TargetPlatforms []Platform
	StartDate       *time.Time
	IsTest          bool
	DeletedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RemainingBudget is budget minus spent; negative after an overshoot.
func (c *Campaign) RemainingBudget() decimal.Decimal {
	return c.Budget.Sub(c.Spent)
}

// IsSweepable reports whether the campaign should incur scrape cost.
func (c *Campaign) IsSweepable() bool {
	if c.IsTest || c.DeletedAt != nil {
		return false
	}
	return c.Status == CampaignStatusActive || c.Status == CampaignStatusPaused
}

func (c *Campaign) TargetsPlatform(p Platform) bool {
	for _, tp := range c.TargetPlatforms {
		if tp == p {
			return true
		}
	}
	return false
}
