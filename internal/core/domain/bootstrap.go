package domain

// BootstrapOutcome is what a bootstrap run did.
type BootstrapOutcome string

const (
	OutcomeNoIntent      BootstrapOutcome = "no_intent"
	OutcomeCreated       BootstrapOutcome = "created"
	OutcomeJoined        BootstrapOutcome = "joined"
	OutcomeAlreadyOwner  BootstrapOutcome = "already_owner"
	OutcomeAlreadyMember BootstrapOutcome = "already_member"
	OutcomeInvalidIntent BootstrapOutcome = "invalid_intent"
	OutcomeFailed        BootstrapOutcome = "failed"
)

// BootstrapResult is returned by every bootstrap run. Warning is a short,
// user-facing message set when provisioning did not complete.
type BootstrapResult struct {
	Intent        IntentKind       `json:"intent"`
	Outcome       BootstrapOutcome `json:"outcome"`
	CompanyID     string           `json:"companyID,omitempty"`
	IntentCleared bool             `json:"intentCleared"`
	Warning       string           `json:"warning,omitempty"`
}

// Succeeded reports whether the user ended up with the intended membership.
func (r BootstrapResult) Succeeded() bool {
	switch r.Outcome {
	case OutcomeCreated, OutcomeJoined, OutcomeAlreadyOwner, OutcomeAlreadyMember, OutcomeNoIntent:
		return true
	}
	return false
}
