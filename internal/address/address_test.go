package address_test

import (
	"testing"

	"github.com/dixis/shipping/internal/address"
	"github.com/dixis/shipping/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAddress() domain.Address {
	return domain.Address{
		Name:         "Μαρία Παπαδοπούλου",
		AddressLine1: "Ερμού 12",
		City:         "Αθήνα",
		PostalCode:   "10563",
		Phone:        "6912345678",
	}
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, address.Validate(validAddress()))
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	err := address.Validate(domain.Address{PostalCode: "10563"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)
	assert.Contains(t, err.Error(), "address_line_1")
	assert.Contains(t, err.Error(), "city")
}

func TestValidate_PostalCodeFormat(t *testing.T) {
	tests := []struct {
		postal string
		valid  bool
	}{
		{"10563", true},
		{"54624", true},
		{"1056", false},
		{"105633", false},
		{"10A63", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.postal, func(t *testing.T) {
			addr := validAddress()
			addr.PostalCode = tt.postal
			err := address.Validate(addr)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidAddress)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	addr := address.Normalize(domain.Address{
		AddressLine1: "  Τσιμισκή 5 ",
		City:         " Θεσσαλονίκη",
		PostalCode:   "546 24",
		Country:      "gr",
		Phone:        "2310 123 456",
	})

	assert.Equal(t, "Τσιμισκή 5", addr.AddressLine1)
	assert.Equal(t, "Θεσσαλονίκη", addr.City)
	assert.Equal(t, "54624", addr.PostalCode)
	assert.Equal(t, "GR", addr.Country)
	assert.Equal(t, "+302310123456", addr.Phone)
	assert.NoError(t, address.Validate(addr))
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"6912345678", "+306912345678"},
		{"+30 691 234 5678", "+306912345678"},
		{"00306912345678", "00306912345678"},
		{"306912345678", "+306912345678"},
		{"(210) 123-4567", "+302101234567"},
		{"+44 20 7946 0958", "+442079460958"},
		{"12345", "12345"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, address.NormalizePhone(tt.in))
		})
	}
}

func TestToCarrier_DefaultsCountry(t *testing.T) {
	got := address.ToCarrier(domain.Address{Name: "Νίκος", AddressLine1: "Ερμού 1", City: "Αθήνα", PostalCode: "10563"})

	assert.Equal(t, "GR", got.CountryCode)
	assert.Equal(t, "10563", got.PostalCode)
	assert.Equal(t, "Ερμού 1", got.AddressLine1)
}
