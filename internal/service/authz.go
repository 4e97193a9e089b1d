package service

import (
	"context"
	"strings"

	domainErrors "github.com/opentill/cashdesk/internal/domain/errors"
	"github.com/opentill/cashdesk/internal/domain/user"
)

// AuthzService resolves a verified email to a user record and decides
// whether that user's role may perform a requested action class. It is a
// pure read; the users store is never written here.
type AuthzService struct {
	users user.Store
}

func NewAuthzService(users user.Store) *AuthzService {
	return &AuthzService{users: users}
}

// Authorize looks up the user by case-insensitive, trimmed email match and
// checks membership of the required role set.
func (s *AuthzService) Authorize(ctx context.Context, email string, required user.RoleSet) (user.User, error) {
	records, err := s.users.ScanAll(ctx)
	if err != nil {
		return user.User{}, domainErrors.NewStoreError("scan users", err)
	}

	needle := strings.ToLower(strings.TrimSpace(email))
	for _, u := range records {
		if strings.ToLower(strings.TrimSpace(u.Email)) != needle {
			continue
		}
		if !u.Active {
			return user.User{}, domainErrors.ErrUserDeactivated
		}
		if !required.Has(u.Role) {
			return user.User{}, domainErrors.ErrInsufficientRole
		}
		return u, nil
	}
	return user.User{}, domainErrors.ErrUserNotFound
}

// AuthorizeBalanceRead applies the read role set plus the caller-side buyer
// rule: a buyer may only query a customer name equal to their own user-record
// name, compared case-insensitively.
func (s *AuthzService) AuthorizeBalanceRead(ctx context.Context, email string, customer string) (user.User, error) {
	u, err := s.Authorize(ctx, email, user.ReadRoles)
	if err != nil {
		return user.User{}, err
	}
	if u.Role == user.RoleBuyer && !u.NameMatches(customer) {
		return user.User{}, domainErrors.ErrBalanceScopeDenied
	}
	return u, nil
}
