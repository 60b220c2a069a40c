// Package dbtest opens a migrated in-memory database and seeds fixtures for
// usecase integration tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"chama-ledger/internal/adapter/repository/mysql"
	"chama-ledger/internal/auth"
	"chama-ledger/internal/domain/contribution"
	"chama-ledger/internal/domain/group"
	"chama-ledger/internal/domain/member"
	"chama-ledger/internal/domain/timing"
	"chama-ledger/internal/domain/uow"
	"chama-ledger/pkg/id"
)

// Open returns a private sqlite memory database with the full schema. A single
// connection is kept so concurrent callers serialize like row locks would.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", id.NewID32())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := mysql.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Fixture is a seeded group with one admin.
type Fixture struct {
	DB      *gorm.DB
	UoW     *mysql.GormUoW
	Repos   uow.Repos
	GroupID string
	Admin   auth.Actor
}

func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	db := Open(t)
	f := &Fixture{DB: db, UoW: mysql.NewGormUoW(db), Repos: mysql.Repos(db), GroupID: id.NewID32()}
	f.Admin = f.AddMember(t, "admin", member.RoleAdmin, timing.NewDate(2024, time.January, 1))
	return f
}

// AddMember inserts a member and returns the actor for it.
func (f *Fixture) AddMember(t *testing.T, name string, role member.Role, joined time.Time) auth.Actor {
	t.Helper()
	m := &member.Member{MemberID: id.NewID32(), GroupID: f.GroupID, Name: name, Role: role, JoinedAt: joined}
	if err := f.Repos.Members.Create(context.Background(), m); err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return auth.Actor{MemberID: m.MemberID, GroupID: f.GroupID, Role: role}
}

// Settings stores settings for the group, starting from the defaults.
func (f *Fixture) Settings(t *testing.T, mutate func(*group.Settings)) *group.Settings {
	t.Helper()
	s := group.Defaults(f.GroupID, timing.NewDate(2024, time.January, 1))
	if mutate != nil {
		mutate(&s)
	}
	if err := f.Repos.Settings.Create(context.Background(), &s); err != nil {
		t.Fatalf("seed settings: %v", err)
	}
	return &s
}

// Savings records a fully paid contribution so the member has a balance.
func (f *Fixture) Savings(t *testing.T, memberID string, week int, amount decimal.Decimal) {
	t.Helper()
	paid := timing.NewDate(2024, time.January, 1)
	c := &contribution.Contribution{
		ContributionID: id.NewID32(),
		GroupID:        f.GroupID,
		MemberID:       memberID,
		WeekNumber:     week,
		ExpectedAmount: amount,
		PaidAmount:     amount,
		PenaltyApplied: decimal.Zero,
		DueDate:        paid,
		PaidDate:       &paid,
		Status:         contribution.StatusPaid,
		TimingRating:   timing.OnTime,
	}
	if err := f.Repos.Contributions.Create(context.Background(), c); err != nil {
		t.Fatalf("seed savings: %v", err)
	}
}
