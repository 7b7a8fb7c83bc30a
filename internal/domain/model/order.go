package model

import "time"

// OrderStatus describes generation and fulfilment lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusGenerating OrderStatus = "generating"
	OrderStatusPreview    OrderStatus = "preview"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusFailed     OrderStatus = "failed"
)

// Valid reports whether status belongs to the lifecycle.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusGenerating, OrderStatusPreview, OrderStatusPaid, OrderStatusFailed:
		return true
	}
	return false
}

// OrderInput carries immutable attributes supplied on submission.
type OrderInput struct {
	Recipient    string
	Date         string
	Mood         string
	CoreSentence string
	Name         *string
	Keywords     *string
}

// Content is the generated poem and image pair. Both are set together.
type Content struct {
	PoemText string
	ImageURL string
}

// Order describes a commissioned poem with its fulfilment state.
type Order struct {
	ID               string
	Token            string
	ShareToken       *string
	Recipient        string
	Date             string
	Mood             string
	CoreSentence     string
	Name             *string
	Keywords         *string
	PoemText         *string
	ImageURL         *string
	Status           OrderStatus
	PricePlan        *PricePlan
	PaymentSessionID *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	PaidAt           *time.Time
}

// HasContent reports whether both generated fields are present.
func (o *Order) HasContent() bool {
	return o.PoemText != nil && *o.PoemText != "" && o.ImageURL != nil && *o.ImageURL != ""
}

// Input returns generation inputs stored on the order.
func (o *Order) Input() OrderInput {
	return OrderInput{
		Recipient:    o.Recipient,
		Date:         o.Date,
		Mood:         o.Mood,
		CoreSentence: o.CoreSentence,
		Name:         o.Name,
		Keywords:     o.Keywords,
	}
}

// OrderPatch names exactly the fields a partial update changes.
// Nil fields are left untouched.
type OrderPatch struct {
	Status           *OrderStatus
	Content          *Content
	PricePlan        *PricePlan
	PaymentSessionID *string
	ShareToken       *string
	PaidAt           *time.Time
}

// IsEmpty reports whether patch changes nothing.
func (p OrderPatch) IsEmpty() bool {
	return p.Status == nil &&
		p.Content == nil &&
		p.PricePlan == nil &&
		p.PaymentSessionID == nil &&
		p.ShareToken == nil &&
		p.PaidAt == nil
}

// Apply merges patch into order in place.
func (p OrderPatch) Apply(o *Order) {
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.Content != nil {
		poem, image := p.Content.PoemText, p.Content.ImageURL
		o.PoemText = &poem
		o.ImageURL = &image
	}
	if p.PricePlan != nil {
		plan := *p.PricePlan
		o.PricePlan = &plan
	}
	if p.PaymentSessionID != nil {
		id := *p.PaymentSessionID
		o.PaymentSessionID = &id
	}
	if p.ShareToken != nil {
		share := *p.ShareToken
		o.ShareToken = &share
	}
	if p.PaidAt != nil {
		paidAt := *p.PaidAt
		o.PaidAt = &paidAt
	}
}

// StatusPtr is a helper for building patches.
func StatusPtr(s OrderStatus) *OrderStatus {
	return &s
}

// FinalFile is the deliverable of a paid order.
type FinalFile struct {
	PoemText    string
	ImageURL    string
	DownloadURL string
	ShareToken  string
}
