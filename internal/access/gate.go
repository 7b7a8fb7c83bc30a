// Package access decides which parts of an order a token holder may see.
package access

import (
	"strings"
	"time"

	"github.com/polkiloo/heartframe/internal/domain/model"
	"github.com/polkiloo/heartframe/internal/pkg/token"
)

// Role is the capability a token grants over an order.
type Role int

const (
	RoleNone Role = iota
	RoleOwner
	RoleShare
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleShare:
		return "share"
	default:
		return "none"
	}
}

// previewPercent is the leading share of poem lines disclosed before payment.
const previewPercent = 35

// RoleFor resolves the role of tok over order. The share token is checked
// first, so an order whose tokens coincide is treated as a shared view.
func RoleFor(order *model.Order, tok string) Role {
	if order == nil {
		return RoleNone
	}
	if order.ShareToken != nil && token.Equal(*order.ShareToken, tok) {
		return RoleShare
	}
	if token.Equal(order.Token, tok) {
		return RoleOwner
	}
	return RoleNone
}

// View is the projection of an order visible to a role.
type View struct {
	Token            *string
	ShareToken       *string
	Status           model.OrderStatus
	Recipient        string
	Date             string
	Mood             string
	CoreSentence     string
	Name             *string
	Keywords         *string
	PoemText         *string
	PoemLines        int
	Partial          bool
	ImageURL         *string
	PricePlan        *model.PricePlan
	PaymentSessionID *string
	CreatedAt        time.Time
	PaidAt           *time.Time
}

// ReleaseFull reports whether complete content may be handed out.
func ReleaseFull(order *model.Order) bool {
	return order.Status == model.OrderStatusPaid && order.HasContent()
}

// Project computes what role sees of order.
func Project(order *model.Order, role Role) View {
	view := View{
		Status:       order.Status,
		Recipient:    order.Recipient,
		Date:         order.Date,
		Mood:         order.Mood,
		CoreSentence: order.CoreSentence,
		Name:         order.Name,
		Keywords:     order.Keywords,
		CreatedAt:    order.CreatedAt,
		PaidAt:       order.PaidAt,
	}

	switch role {
	case RoleOwner:
		tok := order.Token
		view.Token = &tok
		view.ShareToken = order.ShareToken
		view.PricePlan = order.PricePlan
		view.PaymentSessionID = order.PaymentSessionID
		switch {
		case ReleaseFull(order):
			withFullContent(&view, order)
		case order.Status == model.OrderStatusPreview && order.HasContent():
			shown, total := PreviewLines(*order.PoemText)
			poem := strings.Join(shown, "\n")
			image := *order.ImageURL
			view.PoemText = &poem
			view.PoemLines = total
			view.Partial = true
			view.ImageURL = &image
		}
	case RoleShare:
		view.ShareToken = order.ShareToken
		if ReleaseFull(order) {
			withFullContent(&view, order)
		}
	}

	return view
}

func withFullContent(view *View, order *model.Order) {
	poem := *order.PoemText
	image := *order.ImageURL
	view.PoemText = &poem
	view.ImageURL = &image
	view.PoemLines = len(splitLines(poem))
}

// PreviewLines returns the disclosed leading lines of text and the total line count.
// At least one line is disclosed.
func PreviewLines(text string) ([]string, int) {
	lines := splitLines(text)
	total := len(lines)
	n := total * previewPercent / 100
	if n < 1 {
		n = 1
	}
	if n > total {
		n = total
	}
	return lines[:n], total
}

func splitLines(text string) []string {
	return strings.Split(text, "\n")
}
