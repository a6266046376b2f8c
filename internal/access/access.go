// Package access maps an account's age and premium flag to an access phase
// and the feature limits that apply to it.
//
// Evaluation is a pure function of its inputs: nothing is cached or persisted,
// so the phase can never drift from the clock.
package access

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Phase is the time-windowed account status.
type Phase string

const (
	PhaseFullAccess Phase = "full_access"
	PhaseWarning    Phase = "warning"
	PhaseLimited    Phase = "limited"
)

const (
	// TrialDays is the length of the full-access trial.
	TrialDays = 30
	// GraceDays is the account age after which free accounts become limited.
	GraceDays = 45
)

// Quota is a numeric cap. Unlimited encodes to JSON null.
type Quota int

// Unlimited marks a cap (or a remaining-days count) without bound.
const Unlimited Quota = -1

func (q Quota) IsUnlimited() bool { return q < 0 }

// Allows reports whether one more unit fits on top of current.
func (q Quota) Allows(current int) bool {
	return q.IsUnlimited() || current < int(q)
}

func (q Quota) MarshalJSON() ([]byte, error) {
	if q.IsUnlimited() {
		return []byte("null"), nil
	}
	return json.Marshal(int(q))
}

func (q *Quota) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*q = Unlimited
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*q = Quota(n)
	return nil
}

// Limits is the set of caps applied to an account.
type Limits struct {
	MaxActiveEvents     Quota `json:"max_active_events"`
	MaxTasksPerEvent    Quota `json:"max_tasks_per_event"`
	MaxLeads            Quota `json:"max_leads"`
	MaxContentsPerMonth Quota `json:"max_contents_per_month"`
	CanUploadContracts  bool  `json:"can_upload_contracts"`
	CanExport           bool  `json:"can_export"`
}

var (
	// ProLimits applies to premium accounts and to free accounts still in trial or grace.
	ProLimits = Limits{
		MaxActiveEvents:     Unlimited,
		MaxTasksPerEvent:    Unlimited,
		MaxLeads:            Unlimited,
		MaxContentsPerMonth: Unlimited,
		CanUploadContracts:  true,
		CanExport:           true,
	}
	// FreeLimits applies to limited accounts.
	FreeLimits = Limits{
		MaxActiveEvents:     3,
		MaxTasksPerEvent:    5,
		MaxLeads:            10,
		MaxContentsPerMonth: 5,
		CanUploadContracts:  false,
		CanExport:           false,
	}
)

// Account is the subset of the auth account needed for evaluation.
type Account struct {
	ID        string
	CreatedAt time.Time
	IsPremium bool
}

// Info is the evaluated access state of an account.
type Info struct {
	Phase             Phase   `json:"phase"`
	DaysRemaining     Quota   `json:"days_remaining"`
	DaysSinceCreation int     `json:"days_since_creation"`
	Limits            Limits  `json:"limits"`
	IsPro             bool    `json:"is_pro"`
	Message           *string `json:"message,omitempty"`
}

// DaysSince returns the number of whole days between createdAt and now.
// A creation instant in the future counts as day zero.
func DaysSince(createdAt, now time.Time) int {
	d := now.Sub(createdAt)
	if d < 0 {
		return 0
	}
	return int(math.Floor(d.Hours() / 24))
}

// Evaluate computes the access phase of account at now. A nil account is
// treated as limited.
func Evaluate(account *Account, now time.Time) Info {
	if account == nil {
		return Info{
			Phase:         PhaseLimited,
			DaysRemaining: 0,
			Limits:        FreeLimits,
		}
	}

	days := DaysSince(account.CreatedAt, now)

	switch {
	case account.IsPremium:
		return Info{
			Phase:             PhaseFullAccess,
			DaysRemaining:     Unlimited,
			DaysSinceCreation: days,
			Limits:            ProLimits,
			IsPro:             true,
		}
	case days <= TrialDays:
		left := TrialDays - days
		return Info{
			Phase:             PhaseFullAccess,
			DaysRemaining:     Quota(left),
			DaysSinceCreation: days,
			Limits:            ProLimits,
			Message:           message("Your free trial has full access. %d days left.", left),
		}
	case days <= GraceDays:
		left := GraceDays - days
		return Info{
			Phase:             PhaseWarning,
			DaysRemaining:     Quota(left),
			DaysSinceCreation: days,
			Limits:            ProLimits,
			Message:           message("Your trial has ended. Upgrade to Pro to keep full access: %d days left before limits apply.", left),
		}
	default:
		return Info{
			Phase:             PhaseLimited,
			DaysRemaining:     0,
			DaysSinceCreation: days,
			Limits:            FreeLimits,
		}
	}
}

func message(format string, days int) *string {
	s := fmt.Sprintf(format, days)
	return &s
}

// CanAddEvent reports whether another active event may be created.
func (i Info) CanAddEvent(current int) bool {
	return i.IsPro || i.Limits.MaxActiveEvents.Allows(current)
}

// CanAddTask reports whether another checklist item may be added to an event.
func (i Info) CanAddTask(current int) bool {
	return i.IsPro || i.Limits.MaxTasksPerEvent.Allows(current)
}

// CanAddLead reports whether another lead may be created.
func (i Info) CanAddLead(current int) bool {
	return i.IsPro || i.Limits.MaxLeads.Allows(current)
}

// CanAddContent reports whether another content may be scheduled in the month.
func (i Info) CanAddContent(current int) bool {
	return i.IsPro || i.Limits.MaxContentsPerMonth.Allows(current)
}

func (i Info) CanUploadContracts() bool { return i.IsPro || i.Limits.CanUploadContracts }

func (i Info) CanExport() bool { return i.IsPro || i.Limits.CanExport }
