package dto

import "time"

// GenerateRequest describes a new order submission or an owner retry.
// Required submission fields are pointers so absence can be told from empty.
type GenerateRequest struct {
	Recipient    *string `json:"recipient"`
	Date         *string `json:"date"`
	Mood         *string `json:"mood"`
	CoreSentence *string `json:"core_sentence"`
	Name         *string `json:"name,omitempty"`
	Keywords     *string `json:"keywords,omitempty"`
	Token        string  `json:"token,omitempty"`
	Retry        bool    `json:"retry,omitempty"`
}

// GenerateResponse acknowledges accepted generation work.
type GenerateResponse struct {
	Token            string `json:"token"`
	Status           string `json:"status"`
	PollAfterSeconds int    `json:"poll_after_seconds"`
}

// OrderResponse is the order projection visible to a token holder.
type OrderResponse struct {
	Token            *string    `json:"token,omitempty"`
	ShareToken       *string    `json:"share_token,omitempty"`
	Status           string     `json:"status"`
	Recipient        string     `json:"recipient"`
	Date             string     `json:"date"`
	Mood             string     `json:"mood"`
	CoreSentence     string     `json:"core_sentence"`
	Name             *string    `json:"name,omitempty"`
	Keywords         *string    `json:"keywords,omitempty"`
	PoemText         *string    `json:"poem_text,omitempty"`
	PoemLines        int        `json:"poem_lines,omitempty"`
	Partial          bool       `json:"partial,omitempty"`
	ImageURL         *string    `json:"image_url,omitempty"`
	PricePlan        *string    `json:"price_plan,omitempty"`
	PaymentSessionID *string    `json:"payment_session_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
}

// FileResponse carries the finalized deliverable.
type FileResponse struct {
	PoemText    string `json:"poem_text"`
	ImageURL    string `json:"image_url"`
	DownloadURL string `json:"download_url"`
	ShareToken  string `json:"share_token"`
}
