// Package rotation implements the merry-go-round payout cycle: every member
// receives the pooled contributions once per cycle, in slot order.
package rotation

import (
	"context"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"chama-ledger/internal/domain/apperr"
	"chama-ledger/internal/domain/period"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusComplete Status = "complete"
)

func (s Status) Valid() bool { return s == StatusActive || s == StatusComplete }

type Cycle struct {
	ID                       uint64           `gorm:"primaryKey;column:id" json:"-"`
	CycleID                  string           `gorm:"size:32;uniqueIndex:ux_rotation_cycles_cycle_id" json:"cycle_id"`
	GroupID                  string           `gorm:"size:32;uniqueIndex:ux_rotation_cycles_group_number" json:"group_id"`
	CycleNumber              int              `gorm:"uniqueIndex:ux_rotation_cycles_group_number" json:"cycle_number"`
	ContributionAmount       decimal.Decimal  `gorm:"type:decimal(18,2)" json:"contribution_amount"`
	Frequency                period.Frequency `gorm:"size:16" json:"frequency"`
	CurrentRecipientPosition int              `json:"current_recipient_position"`
	StartWeek                int              `gorm:"not null;default:1" json:"start_week"`
	Status                   Status           `gorm:"size:16;index" json:"status"`
	Version                  int              `gorm:"not null;default:1" json:"version"`
	Slots                    []Slot           `gorm:"foreignKey:CycleID;references:ID" json:"slots"`
	CreatedAt                time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Cycle) TableName() string { return "rotation_cycles" }

type Slot struct {
	ID             uint64          `gorm:"primaryKey;column:id" json:"-"`
	CycleID        uint64          `gorm:"index:idx_rotation_slots_cycle" json:"-"`
	MemberID       string          `gorm:"size:32" json:"member_id"`
	Position       int             `json:"position"`
	HasReceived    bool            `json:"has_received"`
	AmountReceived decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount_received"`
	ReceivedAt     *time.Time      `json:"received_at,omitempty"`
}

func (Slot) TableName() string { return "rotation_slots" }

// NewCycle lays out slots 1..n in the given member order.
func NewCycle(groupID string, number int, amount decimal.Decimal, f period.Frequency, order []string) (*Cycle, error) {
	if !amount.IsPositive() {
		return nil, apperr.Invalid("contribution_amount", "must be greater than zero")
	}
	if !f.Valid() {
		return nil, apperr.Invalid("frequency", "must be weekly or monthly")
	}
	if len(order) == 0 {
		return nil, apperr.Invalid("order", "group has no members")
	}
	c := &Cycle{
		GroupID:                  groupID,
		CycleNumber:              number,
		ContributionAmount:       amount,
		Frequency:                f,
		CurrentRecipientPosition: 1,
		StartWeek:                1,
		Status:                   StatusActive,
		Version:                  1,
		Slots:                    make([]Slot, len(order)),
	}
	for i, m := range order {
		c.Slots[i] = Slot{MemberID: m, Position: i + 1, AmountReceived: decimal.Zero}
	}
	return c, nil
}

// WeekFor maps a slot position to the contribution period that funds it.
func (c *Cycle) WeekFor(position int) int {
	start := c.StartWeek
	if start < 1 {
		start = 1
	}
	return start + position - 1
}

// Payout is the pool one recipient receives: contribution × member count.
func (c *Cycle) Payout() decimal.Decimal {
	return c.ContributionAmount.Mul(decimal.NewFromInt(int64(len(c.Slots))))
}

// Slot returns the slot at position (1-based).
func (c *Cycle) Slot(position int) (*Slot, bool) {
	for i := range c.Slots {
		if c.Slots[i].Position == position {
			return &c.Slots[i], true
		}
	}
	return nil, false
}

// CurrentRecipient is the member whose turn it is.
func (c *Cycle) CurrentRecipient() string {
	if s, ok := c.Slot(c.CurrentRecipientPosition); ok {
		return s.MemberID
	}
	return ""
}

// RecordObligationMet marks the slot at position as paid out. Meeting the
// current recipient advances the pointer to the next slot that has not yet
// received; the pointer never moves backward. Once every slot has received
// the cycle is complete and the pointer stays on the last slot.
func (c *Cycle) RecordObligationMet(position int, at time.Time) error {
	if position < 1 || position > len(c.Slots) {
		return apperr.Invalid("position", "out of range")
	}
	s, ok := c.Slot(position)
	if !ok {
		return apperr.Invalid("position", "out of range")
	}
	if position < c.CurrentRecipientPosition || s.HasReceived {
		return &apperr.AlreadyProcessedError{Entity: "rotation_slot", ID: s.MemberID, Status: "received"}
	}

	s.HasReceived = true
	s.AmountReceived = c.Payout()
	s.ReceivedAt = &at

	if position != c.CurrentRecipientPosition {
		return nil
	}
	next := c.CurrentRecipientPosition
	for next <= len(c.Slots) {
		if slot, _ := c.Slot(next); slot != nil && !slot.HasReceived {
			break
		}
		next++
	}
	if next > len(c.Slots) {
		c.CurrentRecipientPosition = len(c.Slots)
		c.Status = StatusComplete
		return nil
	}
	c.CurrentRecipientPosition = next
	return nil
}

// Order returns the member order of the cycle.
func (c *Cycle) Order() []string {
	out := make([]string, len(c.Slots))
	for _, s := range c.Slots {
		if s.Position >= 1 && s.Position <= len(out) {
			out[s.Position-1] = s.MemberID
		}
	}
	return out
}

// OrderRequest selects how the next cycle's slots are ordered.
// Members must be sorted by join date then member id.
type OrderRequest struct {
	Members   []string
	Explicit  []string
	Reshuffle bool
	Previous  []string
	Shuffle   func(n int, swap func(i, j int))
}

// ResolveOrder applies, in priority: explicit order, reshuffle, the previous
// cycle's order (departed members dropped, new members appended), and finally
// the join order.
func ResolveOrder(r OrderRequest) ([]string, error) {
	if len(r.Explicit) > 0 {
		if !isPermutation(r.Explicit, r.Members) {
			return nil, apperr.Invalid("order", "must list every current member exactly once")
		}
		return append([]string(nil), r.Explicit...), nil
	}
	if r.Reshuffle {
		out := append([]string(nil), r.Members...)
		shuffle := r.Shuffle
		if shuffle == nil {
			shuffle = rand.Shuffle
		}
		shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out, nil
	}
	if len(r.Previous) > 0 {
		current := make(map[string]bool, len(r.Members))
		for _, m := range r.Members {
			current[m] = true
		}
		out := make([]string, 0, len(r.Members))
		seen := make(map[string]bool, len(r.Members))
		for _, m := range r.Previous {
			if current[m] && !seen[m] {
				out = append(out, m)
				seen[m] = true
			}
		}
		for _, m := range r.Members {
			if !seen[m] {
				out = append(out, m)
			}
		}
		return out, nil
	}
	return append([]string(nil), r.Members...), nil
}

func isPermutation(order, members []string) bool {
	if len(order) != len(members) {
		return false
	}
	want := make(map[string]int, len(members))
	for _, m := range members {
		want[m]++
	}
	for _, m := range order {
		if want[m] == 0 {
			return false
		}
		want[m]--
	}
	return true
}

type Repository interface {
	Create(ctx context.Context, c *Cycle) error
	GetByCycleIDForUpdate(ctx context.Context, cycleID string) (*Cycle, error)
	GetActiveByGroupID(ctx context.Context, groupID string) (*Cycle, error)
	GetLatestByGroupID(ctx context.Context, groupID string) (*Cycle, error)
	// Update persists the cycle and its slots when the stored version still
	// equals expectedVersion, bumping it by one.
	Update(ctx context.Context, c *Cycle, expectedVersion int) (bool, error)
}
