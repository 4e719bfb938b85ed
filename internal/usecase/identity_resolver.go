package usecase

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/apperror"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	msgFirstNameInvalid = "First name is required and must be at least 2 characters"
	msgLastNameInvalid  = "Last name is required and must be at least 2 characters"
	msgEmailInvalid     = "Valid email is required"
	msgUserNameRequired = "Username is required"
)

// identity holds the four personalInfo fields every profile must carry.
type identity struct {
	FirstName string
	LastName  string
	Email     string
	UserName  string
}

func (id identity) validate() error {
	if len([]rune(id.FirstName)) < 2 {
		return apperror.Validation(msgFirstNameInvalid)
	}
	if len([]rune(id.LastName)) < 2 {
		return apperror.Validation(msgLastNameInvalid)
	}
	if !emailPattern.MatchString(id.Email) {
		return apperror.Validation(msgEmailInvalid)
	}
	if id.UserName == "" {
		return apperror.Validation(msgUserNameRequired)
	}
	return nil
}

func (id identity) applyTo(info domain.Fields) {
	info["firstName"] = id.FirstName
	info["lastName"] = id.LastName
	info["email"] = id.Email
	info["userName"] = id.UserName
}

// identityOf reads the identity fields stored on a personalInfo object.
func identityOf(info domain.Fields) identity {
	return identity{
		FirstName: stringField(info, "firstName"),
		LastName:  stringField(info, "lastName"),
		Email:     stringField(info, "email"),
		UserName:  stringField(info, "userName"),
	}
}

// resolveIdentity picks each field from the payload, then the stored
// profile, then the account. Candidates are trimmed first, so a blank value
// falls through to the next source; email is lowercased.
func resolveIdentity(payload, existing domain.Fields, account *domain.Account) identity {
	pick := func(key, fallback string) string {
		for _, src := range []domain.Fields{payload, existing} {
			if v := strings.TrimSpace(stringField(src, key)); v != "" {
				return v
			}
		}
		return strings.TrimSpace(fallback)
	}
	var acct domain.Account
	if account != nil {
		acct = *account
	}
	return identity{
		FirstName: pick("firstName", acct.FirstName),
		LastName:  pick("lastName", acct.LastName),
		Email:     strings.ToLower(pick("email", acct.Email)),
		UserName:  pick("userName", acct.UserName),
	}
}

func stringField(m domain.Fields, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// identityResolver loads the account backing a profile owner.
type identityResolver struct {
	accounts domain.AccountRepository
}

func (r identityResolver) account(ctx context.Context, ownerID string) (*domain.Account, error) {
	account, err := r.accounts.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Persistence(err)
	}
	return account, nil
}

func (r identityResolver) accountByUserName(ctx context.Context, userName string) (*domain.Account, error) {
	account, err := r.accounts.GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Persistence(err)
	}
	return account, nil
}

// journeyTypeForEmail derives the seeded journeyType from role mailboxes.
func journeyTypeForEmail(email string) string {
	lower := strings.ToLower(email)
	switch {
	case strings.HasPrefix(lower, "hr@"):
		return "Recruiter"
	case strings.HasPrefix(lower, "tpo@"):
		return "TPO"
	default:
		return ""
	}
}
