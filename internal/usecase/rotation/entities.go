package rotation

import (
	"github.com/shopspring/decimal"

	"chama-ledger/internal/domain/period"
	"chama-ledger/internal/domain/rotation"
)

// CreateInput starts a new cycle. Nil amount and frequency fall back to the
// group's contribution settings.
type CreateInput struct {
	ContributionAmount *decimal.Decimal
	Frequency          *period.Frequency
	Order              []string
	Reshuffle          bool
}

// CycleView is a cycle with its derived payout figures.
type CycleView struct {
	rotation.Cycle
	CurrentRecipient string          `json:"current_recipient"`
	CurrentWeek      int             `json:"current_week"`
	Payout           decimal.Decimal `json:"payout"`
}

func view(c *rotation.Cycle) *CycleView {
	return &CycleView{
		Cycle:            *c,
		CurrentRecipient: c.CurrentRecipient(),
		CurrentWeek:      c.WeekFor(c.CurrentRecipientPosition),
		Payout:           c.Payout(),
	}
}
