// Package domain holds DTOs for the smart paste http and service contracts
package domain

import (
	"time"

	"smartpaste/internal/adapters/navigate"
	"smartpaste/internal/core/catalog"
	"smartpaste/internal/core/classifier"
	"smartpaste/internal/core/smartpaste"
	"smartpaste/internal/core/suggest"
)

// ClassifyInput is the input for one-shot classification
type ClassifyInput struct {
	Text    string `json:"text" validate:"max=262144" example:"{\"a\":1}"`
	Explain bool   `json:"explain,omitempty" example:"false"`
}

// ClassifyResp is the classification result, Result is null when nothing qualifies
type ClassifyResp struct {
	Result     *classifier.Result  `json:"result"`
	Tool       *catalog.Tool       `json:"tool,omitempty"`
	Candidates []classifier.Result `json:"candidates,omitempty"`
}

// TargetInput describes the element that received the paste
type TargetInput struct {
	Tag             string `json:"tag,omitempty" validate:"omitempty,max=32" example:"body"`
	ContentEditable bool   `json:"content_editable,omitempty" example:"false"`
}

// PasteInput is one paste event from a client
type PasteInput struct {
	Text    string      `json:"text" validate:"max=262144" example:"550e8400-e29b-41d4-a716-446655440000"`
	Target  TargetInput `json:"target"`
	Surface string      `json:"surface,omitempty" validate:"omitempty,max=64" example:"home"`
	Denied  bool        `json:"denied,omitempty" example:"false"`
}

// SessionSnapshot is the presentation view of a session
type SessionSnapshot struct {
	SessionID     string             `json:"session_id" example:"7f1c0c36-4a8e-4f43-9d5c-1c2d4c1b8c11"`
	IsActive      bool               `json:"is_active" example:"true"`
	CurrentResult *classifier.Result `json:"current_result"`
	Tool          *catalog.Tool      `json:"tool,omitempty"`
	ExpiresAt     *time.Time         `json:"expires_at,omitempty"`
	Generation    uint64             `json:"generation" example:"1"`
	Cause         suggest.Cause      `json:"cause,omitempty" example:"offered"`
}

// PasteResp reports what a paste did to the session
type PasteResp struct {
	Outcome     smartpaste.Outcome    `json:"outcome"`
	Destination *navigate.Destination `json:"destination,omitempty"` // set when auto-navigate fired
	Session     SessionSnapshot       `json:"session"`
}

// AcceptResp carries where the client should go
type AcceptResp struct {
	Result      classifier.Result    `json:"result"`
	Destination navigate.Destination `json:"destination"`
	Session     SessionSnapshot      `json:"session"`
}

// DismissResp reports whether a suggestion was dismissed
type DismissResp struct {
	Dismissed bool            `json:"dismissed" example:"true"`
	Session   SessionSnapshot `json:"session"`
}

// RuleInfo describes one registry rule
type RuleInfo struct {
	Order      int                `json:"order" example:"1"`
	ID         string             `json:"id" example:"jwt"`
	Target     string             `json:"target" example:"jwt-decoder"`
	Confidence float64            `json:"confidence" example:"0.98"`
	Variants   map[string]float64 `json:"variants,omitempty"`
	Pattern    string             `json:"pattern,omitempty"`
	Evidence   string             `json:"evidence,omitempty" example:"jwt"`
	Reason     string             `json:"reason" example:"Looks like a JSON Web Token{detail}"`
}

// RulesResp lists the registry in evaluation order
type RulesResp struct {
	Version   int        `json:"version" example:"1"`
	Name      string     `json:"name" example:"smartpaste-default"`
	Threshold float64    `json:"threshold" example:"0.7"`
	Policy    string     `json:"policy" example:"first-match"`
	Rules     []RuleInfo `json:"rules"`
}
