package member

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chama-ledger/internal/auth"
	"chama-ledger/internal/domain/apperr"
	"chama-ledger/internal/domain/member"
	"chama-ledger/internal/testutil/dbtest"
)

var today = time.Date(2024, 2, 1, 8, 30, 0, 0, time.UTC)

func newUsecase(f *dbtest.Fixture) *Usecase {
	return NewUsecase(f.Repos.Members, f.Repos.Contributions, nil).WithClock(func() time.Time { return today })
}

func TestAdd(t *testing.T) {
	f := dbtest.NewFixture(t)
	uc := newUsecase(f)
	ctx := context.Background()

	m, err := uc.Add(ctx, f.Admin, AddInput{Name: "  Njeri ", Phone: "0712 000000"})
	require.NoError(t, err)
	assert.Len(t, m.MemberID, 32)
	assert.Equal(t, "Njeri", m.Name)
	assert.Equal(t, member.RoleMember, m.Role)
	assert.Equal(t, f.GroupID, m.GroupID)
	assert.Equal(t, "2024-02-01", m.JoinedAt.Format("2006-01-02"))

	fixed := strings.Repeat("c", 32)
	m, err = uc.Add(ctx, f.Admin, AddInput{MemberID: fixed, Name: "Kamau", Role: member.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, fixed, m.MemberID)
}

func TestAdd_Rejects(t *testing.T) {
	f := dbtest.NewFixture(t)
	uc := newUsecase(f)
	ctx := context.Background()

	cases := map[string]AddInput{
		"blank name":   {Name: "   "},
		"unknown role": {Name: "x", Role: "treasurer"},
		"bad id":       {Name: "x", MemberID: "ABC"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Add(ctx, f.Admin, in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}

	m := f.AddMember(t, "plain", member.RoleMember, today)
	_, err := uc.Add(ctx, m, AddInput{Name: "x"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestListWithSavings(t *testing.T) {
	f := dbtest.NewFixture(t)
	uc := newUsecase(f)
	m := f.AddMember(t, "saver", member.RoleMember, today)
	f.Savings(t, m.MemberID, 1, decimal.NewFromInt(1000))
	f.Savings(t, m.MemberID, 2, decimal.NewFromInt(500))

	list, err := uc.List(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, v := range list {
		if v.MemberID == m.MemberID {
			assert.True(t, v.SavingsBalance.Equal(decimal.NewFromInt(1500)), v.SavingsBalance.String())
		} else {
			assert.True(t, v.SavingsBalance.IsZero())
		}
	}
}

func TestGet(t *testing.T) {
	f := dbtest.NewFixture(t)
	uc := newUsecase(f)
	ctx := context.Background()

	got, err := uc.Get(ctx, f.Admin, f.Admin.MemberID)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Name)

	_, err = uc.Get(ctx, f.Admin, strings.Repeat("f", 32))
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	outsider := auth.Actor{MemberID: "x", GroupID: "elsewhere", Role: member.RoleAdmin}
	_, err = uc.Get(ctx, outsider, f.Admin.MemberID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
