// Package store wraps all database access behind context-threaded methods on
// a single Store. Multi-write invariants run inside gorm transactions.
package store

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct{ DB *gorm.DB }

func New(db *gorm.DB) *Store { return &Store{DB: db} }

// Sentinel errors mapped to HTTP statuses by the handlers.
var (
	ErrDuplicate          = errors.New("already exists")
	ErrAlreadyMember      = errors.New("user is already a member of this group")
	ErrOwnerCannotLeave   = errors.New("group owner cannot leave the group")
	ErrCannotRemoveSelf   = errors.New("owner cannot remove themselves")
	ErrNotGroupMember     = errors.New("not a member of this group")
	ErrNotGroupOwner      = errors.New("only the group owner may do this")
	ErrSelectionLimit     = errors.New("movie monday already has 3 selections")
	ErrDuplicateSelection = errors.New("movie already selected for this movie monday")
	ErrNotPicker          = errors.New("only the assigned picker may set the winner")
	ErrLastCategory       = errors.New("cannot delete your only watchlist category")
	ErrDefaultCategory    = errors.New("the default watchlist category cannot be deleted")
	ErrDuplicateItem      = errors.New("movie already in this category")
	ErrForbidden          = errors.New("forbidden")
	ErrInviteExpired      = errors.New("invite has expired")
	ErrInviteResolved     = errors.New("invite already responded to")
)

func notFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

// lockForUpdate takes a row lock on databases that support it. SQLite (used
// in tests) serializes writers anyway.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
