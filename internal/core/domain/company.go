package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Plan is the subscription plan of a company.
type Plan string

const (
	PlanTrial      Plan = "trial"
	PlanStarter    Plan = "starter"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// DefaultPlan is used whenever a requested plan is missing or unknown.
const DefaultPlan = PlanTrial

// Company names are counted in runes after trimming.
const (
	MinCompanyNameLength = 2
	MaxCompanyNameLength = 120
)

// ValidCompanyName reports whether an already trimmed name has an allowed length.
func ValidCompanyName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= MinCompanyNameLength && n <= MaxCompanyNameLength
}

var planLabels = map[Plan]string{
	PlanTrial:      "Deneme Sürümü",
	PlanStarter:    "Başlangıç",
	PlanPro:        "Profesyonel",
	PlanEnterprise: "Kurumsal",
}

// Plans lists the allowed plans in display order.
func Plans() []Plan {
	return []Plan{PlanTrial, PlanStarter, PlanPro, PlanEnterprise}
}

// IsValid reports whether p is one of the allowed plans.
func (p Plan) IsValid() bool {
	_, ok := planLabels[p]
	return ok
}

// Label returns the Turkish display name of the plan.
func (p Plan) Label() string {
	return planLabels[p]
}

// NormalizePlan maps free-form input onto the allowed plan set.
// Display labels are accepted too; anything else falls back to DefaultPlan.
func NormalizePlan(raw string) Plan {
	v := strings.TrimSpace(raw)
	if v == "" {
		return DefaultPlan
	}
	p := Plan(strings.ToLower(v))
	if p.IsValid() {
		return p
	}
	for plan, label := range planLabels {
		if strings.EqualFold(label, v) {
			return plan
		}
	}
	return DefaultPlan
}

// Currency is the budget currency of a company.
type Currency string

const (
	CurrencyTRY Currency = "TRY"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

const DefaultCurrency = CurrencyTRY

// NormalizeCurrency returns the upper-cased currency or DefaultCurrency when unsupported.
func NormalizeCurrency(raw string) Currency {
	switch c := Currency(strings.ToUpper(strings.TrimSpace(raw))); c {
	case CurrencyTRY, CurrencyUSD, CurrencyEUR:
		return c
	}
	return DefaultCurrency
}

// Company is a tenant: one construction company owning projects and members.
type Company struct {
	CompanyID     string          `json:"companyID" db:"company_id"`
	Name          string          `json:"name" db:"name"`
	Plan          Plan            `json:"plan" db:"plan"`
	Currency      Currency        `json:"currency" db:"currency"`
	InitialBudget decimal.Decimal `json:"initialBudget" db:"initial_budget"`
	OwnerID       string          `json:"ownerID" db:"owner_id"`
	AuditFields
	Version int64 `json:"version" db:"version"`
}
