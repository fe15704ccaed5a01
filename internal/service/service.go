// Package service implements the business rules: the friend request state
// machine, group membership authorization and the content workflow. Every
// method takes the acting user explicitly.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"socialhub/backend/internal/apperr"
	"socialhub/backend/internal/store"

	"gorm.io/gorm"
)

func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFoundf("%s", msg)
	}
	return err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// requireMembership is the group-scoped access check. It is evaluated on every
// call; memberships can change between requests.
func requireMembership(ctx context.Context, st *store.Store, groupID, userID uint, msg string) error {
	m, err := st.Membership(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if m == nil {
		return apperr.Forbiddenf("%s", msg)
	}
	return nil
}
