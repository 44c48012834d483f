package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/auth"
	"github.com/andresuchdata/pharmacare/backend-go/internal/cache"
	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

const defaultOTPTTL = 10 * time.Minute

// OTPSender delivers one-time passwords over SMS or email
type OTPSender interface {
	SendOTP(ctx context.Context, account domain.Account, code string) error
}

// LogOTPSender writes codes to the log; used in development
type LogOTPSender struct{}

func (LogOTPSender) SendOTP(ctx context.Context, account domain.Account, code string) error {
	log.Info().Str("account", account.ID).Str("otp", code).Msg("auth: one-time password issued")
	return nil
}

type RegisterInput struct {
	Name          string
	Email         string
	Phone         string
	Password      string
	Role          domain.Role
	PharmacyName  string
	Address       string
	PostalCode    string
	LicenseNumber string
}

type ProfileInput struct {
	Name          *string
	PharmacyName  *string
	Address       *string
	PostalCode    *string
	LicenseNumber *string
	IsAvailable   *bool
}

// Session is what a successful login or registration returns
type Session struct {
	Account *domain.Account `json:"account"`
	Token   *auth.Token     `json:"token"`
}

type AuthService struct {
	accounts repository.AccountRepository
	tokens   *auth.JWTService
	hasher   *auth.Hasher
	sender   OTPSender
	otpTTL   time.Duration
	searches cache.SearchCache
	now      Clock
}

func NewAuthService(accounts repository.AccountRepository, tokens *auth.JWTService, hasher *auth.Hasher, sender OTPSender, otpTTL time.Duration, searchCache cache.SearchCache, now Clock) *AuthService {
	if searchCache == nil {
		searchCache = cache.NewNoopSearchCache()
	}
	if sender == nil {
		sender = LogOTPSender{}
	}
	if otpTTL <= 0 {
		otpTTL = defaultOTPTTL
	}
	if now == nil {
		now = NewClock(nil)
	}
	return &AuthService{accounts: accounts, tokens: tokens, hasher: hasher, sender: sender, otpTTL: otpTTL, searches: searchCache, now: now}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	account := &domain.Account{
		Name:          strings.TrimSpace(in.Name),
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:         strings.TrimSpace(in.Phone),
		Role:          in.Role,
		PharmacyName:  strings.TrimSpace(in.PharmacyName),
		Address:       strings.TrimSpace(in.Address),
		PostalCode:    strings.TrimSpace(in.PostalCode),
		LicenseNumber: strings.TrimSpace(in.LicenseNumber),
	}
	if account.Role == "" {
		account.Role = domain.RoleCustomer
	}

	switch {
	case !account.Role.Valid():
		return nil, fmt.Errorf("unknown role %q: %w", in.Role, domain.ErrInvalidInput)
	case account.Role == domain.RoleAdmin:
		return nil, fmt.Errorf("admin accounts cannot self-register: %w", domain.ErrForbidden)
	case account.Name == "":
		return nil, fmt.Errorf("name is required: %w", domain.ErrInvalidInput)
	case account.Email == "" && account.Phone == "":
		return nil, fmt.Errorf("email or phone is required: %w", domain.ErrInvalidInput)
	case account.Email != "" && len(in.Password) < auth.MinPasswordLen:
		return nil, fmt.Errorf("password must be at least %d characters: %w", auth.MinPasswordLen, domain.ErrInvalidInput)
	case account.Role == domain.RolePharmacist && (account.PharmacyName == "" || account.PostalCode == ""):
		return nil, fmt.Errorf("pharmacy name and postal code are required for pharmacists: %w", domain.ErrInvalidInput)
	}

	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, err
		}
		account.PasswordHash = hash
	}

	// Pharmacists wait for an admin to verify them but can list inventory meanwhile
	account.IsVerified = account.Role == domain.RoleCustomer
	account.IsAvailable = account.Role == domain.RolePharmacist

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("an account with this email or phone already exists: %w", domain.ErrConflict)
		}
		return nil, err
	}

	return s.session(account)
}

func (s *AuthService) Login(ctx context.Context, identifier, password string) (*Session, error) {
	account, err := s.lookup(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if !s.hasher.Matches(account.PasswordHash, password) {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	return s.session(account)
}

// RequestOTP issues a code for login or password reset. Unknown identifiers
// succeed silently so the endpoint cannot be used to probe for accounts.
func (s *AuthService) RequestOTP(ctx context.Context, identifier string) error {
	account, err := s.lookup(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Debug().Msg("auth: otp requested for unknown account")
			return nil
		}
		return err
	}

	code, err := auth.GenerateOTP()
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(code)
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(s.otpTTL)
	if err := s.accounts.SetOTP(ctx, account.ID, hash, &expiresAt); err != nil {
		return err
	}

	return s.sender.SendOTP(ctx, *account, code)
}

func (s *AuthService) VerifyOTP(ctx context.Context, identifier, code string) (*Session, error) {
	account, err := s.consumeOTP(ctx, identifier, code)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.SetOTP(ctx, account.ID, "", nil); err != nil {
		return nil, err
	}
	account.OTPHash = ""
	account.OTPExpiresAt = nil
	return s.session(account)
}

func (s *AuthService) ResetPassword(ctx context.Context, identifier, code, newPassword string) error {
	if len(newPassword) < auth.MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters: %w", auth.MinPasswordLen, domain.ErrInvalidInput)
	}
	account, err := s.consumeOTP(ctx, identifier, code)
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	// SetPassword clears the one-time password as well
	return s.accounts.SetPassword(ctx, account.ID, hash)
}

func (s *AuthService) consumeOTP(ctx context.Context, identifier, code string) (*domain.Account, error) {
	account, err := s.lookup(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid or expired code: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if account.OTPHash == "" || account.OTPExpiresAt == nil || s.now().After(*account.OTPExpiresAt) {
		return nil, fmt.Errorf("invalid or expired code: %w", domain.ErrUnauthorized)
	}
	if !s.hasher.Matches(account.OTPHash, strings.TrimSpace(code)) {
		return nil, fmt.Errorf("invalid or expired code: %w", domain.ErrUnauthorized)
	}
	return account, nil
}

func (s *AuthService) Me(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accounts.FindByID(ctx, accountID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, accountID string, in ProfileInput) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	before := *account

	if in.Name != nil {
		account.Name = strings.TrimSpace(*in.Name)
	}
	if in.PharmacyName != nil {
		account.PharmacyName = strings.TrimSpace(*in.PharmacyName)
	}
	if in.Address != nil {
		account.Address = strings.TrimSpace(*in.Address)
	}
	if in.PostalCode != nil {
		account.PostalCode = strings.TrimSpace(*in.PostalCode)
	}
	if in.LicenseNumber != nil {
		account.LicenseNumber = strings.TrimSpace(*in.LicenseNumber)
	}
	if in.IsAvailable != nil {
		if !account.IsPharmacist() {
			return nil, fmt.Errorf("only pharmacists have availability: %w", domain.ErrInvalidInput)
		}
		account.IsAvailable = *in.IsAvailable
	}

	if account.Name == "" {
		return nil, fmt.Errorf("name is required: %w", domain.ErrInvalidInput)
	}
	if account.IsPharmacist() && (account.PharmacyName == "" || account.PostalCode == "") {
		return nil, fmt.Errorf("pharmacy name and postal code are required for pharmacists: %w", domain.ErrInvalidInput)
	}

	if err := s.accounts.UpdateProfile(ctx, account); err != nil {
		return nil, err
	}
	if account.IsPharmacist() && listingChanged(before, *account) {
		if err := s.searches.InvalidateAll(ctx); err != nil {
			log.Warn().Err(err).Str("account", account.ID).Msg("auth: cache invalidate search failed")
		}
	}
	return account, nil
}

// listingChanged reports whether an edit touches what medicine search shows
// or filters on for this pharmacy.
func listingChanged(before, after domain.Account) bool {
	return before.Name != after.Name ||
		before.PharmacyName != after.PharmacyName ||
		before.Address != after.Address ||
		before.PostalCode != after.PostalCode ||
		before.LicenseNumber != after.LicenseNumber ||
		before.IsAvailable != after.IsAvailable
}

// VerifyPharmacist sets the admin verification flag on a pharmacist account
func (s *AuthService) VerifyPharmacist(ctx context.Context, pharmacistID string, verified bool) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, pharmacistID)
	if err != nil {
		return nil, err
	}
	if !account.IsPharmacist() {
		return nil, fmt.Errorf("account %s is not a pharmacist: %w", pharmacistID, domain.ErrInvalidInput)
	}
	if err := s.accounts.SetVerified(ctx, pharmacistID, verified); err != nil {
		return nil, err
	}
	account.IsVerified = verified
	return account, nil
}

func (s *AuthService) lookup(ctx context.Context, identifier string) (*domain.Account, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, fmt.Errorf("email or phone is required: %w", domain.ErrInvalidInput)
	}
	if strings.Contains(identifier, "@") {
		return s.accounts.FindByEmail(ctx, identifier)
	}
	return s.accounts.FindByPhone(ctx, identifier)
}

func (s *AuthService) session(account *domain.Account) (*Session, error) {
	token, err := s.tokens.Issue(account)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Account: account, Token: token}, nil
}
