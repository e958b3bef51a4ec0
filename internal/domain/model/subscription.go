package model

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"subscription-tracker/internal/domain"
)

// Status is the lifecycle state of a subscription. The string values are the
// tokens persisted in existing data; the constant names are the internal
// mapping.
type Status string

const (
	StatusActive    Status = "activa"
	StatusCancelled Status = "cancelada"
	StatusPaused    Status = "pausada"
	StatusExpired   Status = "expirada"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCancelled, StatusPaused, StatusExpired:
		return true
	}
	return false
}

// Frequency is the billing cadence of a subscription.
type Frequency string

const (
	FrequencyDaily   Frequency = "diaria"
	FrequencyWeekly  Frequency = "semanal"
	FrequencyMonthly Frequency = "mensual"
	FrequencyAnnual  Frequency = "anual"
)

func (f Frequency) Valid() bool {
	_, ok := RenewalPeriods[f]
	return ok
}

// RenewalPeriods maps each billing frequency to a fixed day count used for
// renewal-date derivation. This is deliberately NOT calendar arithmetic
// ("mensual" is +30 days, not same-day-next-month); swap this table out for a
// calendar-aware policy if that ever changes.
var RenewalPeriods = map[Frequency]int{
	FrequencyDaily:   1,
	FrequencyWeekly:  7,
	FrequencyMonthly: 30,
	FrequencyAnnual:  365,
}

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyMXN Currency = "MXN"
	CurrencyARS Currency = "ARS"
	CurrencyCOP Currency = "COP"
	CurrencyPEN Currency = "PEN"
	CurrencyCLP Currency = "CLP"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyMXN, CurrencyARS, CurrencyCOP, CurrencyPEN, CurrencyCLP:
		return true
	}
	return false
}

type Category string

const (
	CategoryStreaming    Category = "streaming"
	CategorySoftware     Category = "software"
	CategoryGaming       Category = "gaming"
	CategoryEducation    Category = "educacion"
	CategoryProductivity Category = "productividad"
	CategoryHealth       Category = "salud"
	CategoryFinance      Category = "finanzas"
	CategoryOther        Category = "otro"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryStreaming, CategorySoftware, CategoryGaming, CategoryEducation,
		CategoryProductivity, CategoryHealth, CategoryFinance, CategoryOther:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "tarjeta de crédito"
	PaymentMethodDebitCard    PaymentMethod = "tarjeta de débito"
	PaymentMethodPayPal       PaymentMethod = "PayPal"
	PaymentMethodBankTransfer PaymentMethod = "transferencia bancaria"
	PaymentMethodOther        PaymentMethod = "otros"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodPayPal,
		PaymentMethodBankTransfer, PaymentMethodOther:
		return true
	}
	return false
}

// Subscription is a single tracked subscription owned by one user.
// UserID is set at creation and never reassigned.
type Subscription struct {
	ID            string
	UserID        string
	Name          string
	Description   string
	Website       string
	Notes         string
	Price         float64
	Currency      Currency
	Frequency     Frequency
	Category      Category
	PaymentMethod PaymentMethod
	Status        Status
	StartDate     time.Time
	RenewalDate   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidName reports whether name is 2-100 chars of letters (accented and ñ
// included), digits, spaces and -_.&()[].
func ValidName(name string) bool {
	name = strings.TrimSpace(name)
	n := 0
	for _, r := range name {
		n++
		if !validNameRune(r) {
			return false
		}
	}
	return n >= 2 && n <= 100
}

func validNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r >= 0x00C0 && r <= 0x00FF: // accented latin letters, incl. ñ/Ñ
		return true
	}
	switch r {
	case ' ', '-', '_', '.', '&', '(', ')', '[', ']':
		return true
	}
	return false
}

// ValidPrice requires a strictly positive amount with at most two fractional
// digits. The tolerance absorbs float64 representation error on the cent
// value, which grows with magnitude; a genuine extra digit is off by at
// least a tenth of a cent and stays detectable across the NUMERIC(12,2)
// range.
func ValidPrice(price float64) bool {
	if price <= 0 {
		return false
	}
	cents := price * 100
	return math.Abs(cents-math.Round(cents)) < 1e-3
}

// ValidateSubmittedDates enforces the write-time date rules: the start date
// must not lie in the future relative to now, and a caller-supplied renewal
// date must be strictly after the start date.
func ValidateSubmittedDates(startDate time.Time, renewalDate *time.Time, now time.Time) error {
	if startDate.After(now) {
		return fmt.Errorf("start date cannot be in the future: %w", domain.ErrValidation)
	}
	if renewalDate != nil && !renewalDate.After(startDate) {
		return domain.ErrInvalidDateOrdering
	}
	return nil
}

// DeriveRenewalDate returns the effective renewal date. An explicit date is
// used as-is after the ordering check; otherwise the date is startDate plus
// the fixed day count for the frequency.
func DeriveRenewalDate(startDate time.Time, frequency Frequency, explicit *time.Time) (time.Time, error) {
	if explicit != nil {
		if !explicit.After(startDate) {
			return time.Time{}, domain.ErrInvalidDateOrdering
		}
		return *explicit, nil
	}
	days, ok := RenewalPeriods[frequency]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown frequency %q: %w", frequency, domain.ErrValidation)
	}
	return startDate.AddDate(0, 0, days), nil
}

// EffectiveStatus applies the write-time expiry override: a renewal date at or
// before now forces expired, whatever the caller requested. An empty requested
// status defaults to active. The rule runs only when a write happens; wall
// clock alone never flips a stored status.
func EffectiveStatus(renewalDate time.Time, requested Status, now time.Time) Status {
	if !renewalDate.After(now) {
		return StatusExpired
	}
	if requested == "" {
		return StatusActive
	}
	return requested
}

// Validate checks all field-level business rules of a fully assembled
// subscription.
func (s *Subscription) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("owner is required: %w", domain.ErrValidation)
	}
	if !ValidName(s.Name) {
		return fmt.Errorf("invalid subscription name: %w", domain.ErrValidation)
	}
	if len(s.Description) > 500 {
		return fmt.Errorf("description exceeds 500 characters: %w", domain.ErrValidation)
	}
	if len(s.Notes) > 1000 {
		return fmt.Errorf("notes exceed 1000 characters: %w", domain.ErrValidation)
	}
	if s.Website != "" {
		u, err := url.Parse(s.Website)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid website URL: %w", domain.ErrValidation)
		}
	}
	if !ValidPrice(s.Price) {
		return fmt.Errorf("price must be positive with at most two decimals: %w", domain.ErrValidation)
	}
	if !s.Currency.Valid() {
		return fmt.Errorf("invalid currency %q: %w", s.Currency, domain.ErrValidation)
	}
	if !s.Frequency.Valid() {
		return fmt.Errorf("invalid frequency %q: %w", s.Frequency, domain.ErrValidation)
	}
	if !s.Category.Valid() {
		return fmt.Errorf("invalid category %q: %w", s.Category, domain.ErrValidation)
	}
	if !s.PaymentMethod.Valid() {
		return fmt.Errorf("invalid payment method %q: %w", s.PaymentMethod, domain.ErrValidation)
	}
	if !s.Status.Valid() {
		return fmt.Errorf("invalid status %q: %w", s.Status, domain.ErrValidation)
	}
	if !s.RenewalDate.After(s.StartDate) {
		return domain.ErrInvalidDateOrdering
	}
	return nil
}
