//go:build !integration

package model_test

import (
	"errors"
	"testing"
	"time"

	"subscription-tracker/internal/domain"
	"subscription-tracker/internal/domain/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDeriveRenewalDate(t *testing.T) {
	start := date(2026, 1, 15)

	t.Run("derives a fixed day count per frequency", func(t *testing.T) {
		cases := []struct {
			frequency model.Frequency
			want      time.Time
		}{
			{model.FrequencyDaily, date(2026, 1, 16)},
			{model.FrequencyWeekly, date(2026, 1, 22)},
			{model.FrequencyMonthly, date(2026, 2, 14)},
			{model.FrequencyAnnual, date(2027, 1, 15)},
		}
		for _, tc := range cases {
			got, err := model.DeriveRenewalDate(start, tc.frequency, nil)
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", tc.frequency, err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("%s: got %v, want %v", tc.frequency, got, tc.want)
			}
		}
	})

	t.Run("monthly is 30 days, not calendar month arithmetic", func(t *testing.T) {
		got, err := model.DeriveRenewalDate(date(2026, 2, 1), model.FrequencyMonthly, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := date(2026, 3, 3); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("explicit renewal date is used as-is", func(t *testing.T) {
		explicit := date(2026, 6, 1)
		got, err := model.DeriveRenewalDate(start, model.FrequencyMonthly, &explicit)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(explicit) {
			t.Errorf("got %v, want %v", got, explicit)
		}
	})

	t.Run("explicit renewal date at or before start is rejected", func(t *testing.T) {
		for _, explicit := range []time.Time{start, start.AddDate(0, 0, -1)} {
			e := explicit
			_, err := model.DeriveRenewalDate(start, model.FrequencyMonthly, &e)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("explicit=%v: expected validation error, got %v", e, err)
			}
		}
	})

	t.Run("unknown frequency is rejected", func(t *testing.T) {
		_, err := model.DeriveRenewalDate(start, model.Frequency("quincenal"), nil)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestValidateSubmittedDates(t *testing.T) {
	now := date(2026, 5, 1)

	t.Run("future start date is rejected", func(t *testing.T) {
		err := model.ValidateSubmittedDates(now.AddDate(0, 0, 1), nil, now)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("start date today is accepted", func(t *testing.T) {
		if err := model.ValidateSubmittedDates(now, nil, now); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("renewal date must be strictly after start", func(t *testing.T) {
		start := date(2026, 4, 1)
		same := start
		if err := model.ValidateSubmittedDates(start, &same, now); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
		after := start.AddDate(0, 0, 1)
		if err := model.ValidateSubmittedDates(start, &after, now); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestEffectiveStatus(t *testing.T) {
	now := date(2026, 5, 1)

	t.Run("lapsed renewal date forces expired regardless of request", func(t *testing.T) {
		for _, requested := range []model.Status{model.StatusActive, model.StatusPaused, ""} {
			got := model.EffectiveStatus(now.AddDate(0, 0, -1), requested, now)
			if got != model.StatusExpired {
				t.Errorf("requested=%q: got %q, want %q", requested, got, model.StatusExpired)
			}
		}
	})

	t.Run("renewal date equal to now counts as lapsed", func(t *testing.T) {
		if got := model.EffectiveStatus(now, model.StatusActive, now); got != model.StatusExpired {
			t.Errorf("got %q, want %q", got, model.StatusExpired)
		}
	})

	t.Run("empty requested status defaults to active", func(t *testing.T) {
		if got := model.EffectiveStatus(now.AddDate(0, 0, 10), "", now); got != model.StatusActive {
			t.Errorf("got %q, want %q", got, model.StatusActive)
		}
	})

	t.Run("future renewal date keeps the requested status", func(t *testing.T) {
		if got := model.EffectiveStatus(now.AddDate(0, 0, 10), model.StatusPaused, now); got != model.StatusPaused {
			t.Errorf("got %q, want %q", got, model.StatusPaused)
		}
	})
}

func TestValidName(t *testing.T) {
	valid := []string{
		"Netflix",
		"Café & Música 2024",
		"My-App_v2.0 (beta) [new]",
		"ñandú",
		"ab",
	}
	for _, name := range valid {
		if !model.ValidName(name) {
			t.Errorf("expected %q to be valid", name)
		}
	}

	invalid := []string{
		"",
		"a",
		"service@home",
		"50% off!",
		"precio: $10",
		"#premium",
		strings101(),
	}
	for _, name := range invalid {
		if model.ValidName(name) {
			t.Errorf("expected %q to be invalid", name)
		}
	}
}

// strings101 builds a 101-character name, one over the limit.
func strings101() string {
	b := make([]byte, 101)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}

func TestValidPrice(t *testing.T) {
	// Large values pick up float64 representation error on price*100; the
	// two-decimal check must tolerate it up to the NUMERIC(12,2) range.
	for _, p := range []float64{0.01, 9.99, 44.90, 1000, 5000000.01, 9999999999.99} {
		if !model.ValidPrice(p) {
			t.Errorf("expected %v to be valid", p)
		}
	}
	for _, p := range []float64{0, -5, 9.999, 0.001, 1000.005} {
		if model.ValidPrice(p) {
			t.Errorf("expected %v to be invalid", p)
		}
	}
}

func TestSubscriptionValidate(t *testing.T) {
	base := func() *model.Subscription {
		return &model.Subscription{
			ID:            "sub-1",
			UserID:        "user-1",
			Name:          "Netflix",
			Price:         44.90,
			Currency:      model.CurrencyPEN,
			Frequency:     model.FrequencyMonthly,
			Category:      model.CategoryStreaming,
			PaymentMethod: model.PaymentMethodCreditCard,
			Status:        model.StatusActive,
			StartDate:     date(2026, 1, 1),
			RenewalDate:   date(2026, 1, 31),
		}
	}

	t.Run("accepts a fully valid subscription", func(t *testing.T) {
		if err := base().Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("rejects bad enum values", func(t *testing.T) {
		s := base()
		s.Currency = "GBP"
		if err := s.Validate(); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("currency: expected validation error, got %v", err)
		}

		s = base()
		s.Category = "musica"
		if err := s.Validate(); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("category: expected validation error, got %v", err)
		}

		s = base()
		s.PaymentMethod = "efectivo"
		if err := s.Validate(); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("payment method: expected validation error, got %v", err)
		}
	})

	t.Run("rejects website without scheme or host", func(t *testing.T) {
		s := base()
		s.Website = "not a url"
		if err := s.Validate(); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
		s.Website = "https://netflix.com"
		if err := s.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("rejects renewal date not after start date", func(t *testing.T) {
		s := base()
		s.RenewalDate = s.StartDate
		if err := s.Validate(); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}
