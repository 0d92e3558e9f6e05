package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PendingIntentKey is the single metadata key holding a user's pending intent.
const PendingIntentKey = "pending_intent"

// IntentKind tags the PendingIntent variant.
type IntentKind string

const (
	IntentNone         IntentKind = "none"
	IntentCreateTenant IntentKind = "create_tenant"
	IntentJoinTenant   IntentKind = "join_tenant"
)

var (
	ErrIntentAmbiguous  = errors.New("provide either a company name or a company id, not both")
	ErrIntentMissing    = errors.New("a company name or a company id is required")
	ErrIntentNameLength = fmt.Errorf("company name must be between %d and %d characters", MinCompanyNameLength, MaxCompanyNameLength)
)

// PendingIntent is the create-or-join instruction stashed at signup and
// consumed once after authentication. Only the fields of Kind are set.
type PendingIntent struct {
	Kind       IntentKind `json:"kind"`
	TenantName string     `json:"tenantName,omitempty"`
	Plan       Plan       `json:"plan,omitempty"`
	TenantID   string     `json:"tenantId,omitempty"`
}

func NoIntent() PendingIntent {
	return PendingIntent{Kind: IntentNone}
}

func CreateTenantIntent(name string, plan Plan) PendingIntent {
	return PendingIntent{Kind: IntentCreateTenant, TenantName: strings.TrimSpace(name), Plan: plan}
}

func JoinTenantIntent(tenantID string) PendingIntent {
	return PendingIntent{Kind: IntentJoinTenant, TenantID: strings.TrimSpace(tenantID)}
}

func (p PendingIntent) IsNone() bool {
	return p.Kind == IntentNone || p.Kind == ""
}

// NewSignupIntent validates signup input: exactly one of name or id must be given.
// The plan is normalized here so the stored intent is always well-formed.
func NewSignupIntent(tenantName, plan, tenantID string) (PendingIntent, error) {
	name := strings.TrimSpace(tenantName)
	id := strings.TrimSpace(tenantID)
	switch {
	case name != "" && id != "":
		return PendingIntent{}, ErrIntentAmbiguous
	case name != "":
		if !ValidCompanyName(name) {
			return PendingIntent{}, ErrIntentNameLength
		}
		return CreateTenantIntent(name, NormalizePlan(plan)), nil
	case id != "":
		return JoinTenantIntent(id), nil
	}
	return PendingIntent{}, ErrIntentMissing
}

// ToMetadata returns the merge patch that stores p. A None intent clears the key.
func (p PendingIntent) ToMetadata() Metadata {
	if p.IsNone() {
		return Metadata{PendingIntentKey: nil}
	}
	return Metadata{PendingIntentKey: p}
}

// ClearIntentPatch is the metadata merge patch that removes the pending intent.
func ClearIntentPatch() Metadata {
	return Metadata{PendingIntentKey: nil}
}

// IntentFromMetadata decodes the pending intent from a user's metadata.
// When a record carries both a name and an id, the create variant wins and
// the id is dropped, so decoding is deterministic.
func IntentFromMetadata(md Metadata) (PendingIntent, error) {
	raw, ok := md[PendingIntentKey]
	if !ok || raw == nil {
		return NoIntent(), nil
	}

	var decoded PendingIntent
	switch v := raw.(type) {
	case PendingIntent:
		decoded = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return NoIntent(), fmt.Errorf("encode pending intent: %w", err)
		}
		if err := json.Unmarshal(b, &decoded); err != nil {
			return NoIntent(), fmt.Errorf("decode pending intent: %w", err)
		}
	}

	name := strings.TrimSpace(decoded.TenantName)
	id := strings.TrimSpace(decoded.TenantID)
	switch {
	case name != "":
		return CreateTenantIntent(name, NormalizePlan(string(decoded.Plan))), nil
	case id != "":
		return JoinTenantIntent(id), nil
	}
	return NoIntent(), nil
}
