// Package address validates and normalises Greek delivery addresses.
package address

import (
	"errors"
	"regexp"
	"strings"

	"github.com/dixis/shipping/internal/domain"
	"github.com/dixis/shipping/pkg/carrier"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	postalCodeRe = regexp.MustCompile(`^\d{5}$`)
)

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("gr_postcode", validatePostalCode); err != nil {
		panic(err)
	}
}

func validatePostalCode(fl validator.FieldLevel) bool {
	return postalCodeRe.MatchString(fl.Field().String())
}

// Validate checks the fields a carrier needs to create a voucher. The address
// should already be normalised.
func Validate(addr domain.Address) error {
	err := validate.Struct(addr)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewError(domain.KindInvalidAddress, "address could not be validated").WithCause(err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldName(fe))
	}
	return domain.NewError(domain.KindInvalidAddress, "invalid fields: %s", strings.Join(fields, ", "))
}

func fieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "AddressLine1":
		return "address_line_1"
	case "AddressLine2":
		return "address_line_2"
	case "PostalCode":
		return "postal_code"
	default:
		return strings.ToLower(fe.Field())
	}
}

// Normalize trims every field, strips spaces from the postal code and applies
// NormalizePhone.
func Normalize(addr domain.Address) domain.Address {
	addr.Name = strings.TrimSpace(addr.Name)
	addr.AddressLine1 = strings.TrimSpace(addr.AddressLine1)
	addr.AddressLine2 = strings.TrimSpace(addr.AddressLine2)
	addr.City = strings.TrimSpace(addr.City)
	addr.Region = strings.TrimSpace(addr.Region)
	addr.PostalCode = strings.ReplaceAll(strings.TrimSpace(addr.PostalCode), " ", "")
	addr.Country = strings.ToUpper(strings.TrimSpace(addr.Country))
	addr.Email = strings.TrimSpace(addr.Email)
	addr.Phone = NormalizePhone(addr.Phone)
	return addr
}

// NormalizePhone keeps digits and '+', then applies the +30 convention: numbers
// starting with +30 or 0030 are kept, a leading 30 gains '+', and a bare
// 10-digit national number gains +30.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	p := b.String()

	switch {
	case p == "":
		return ""
	case strings.HasPrefix(p, "+30"), strings.HasPrefix(p, "0030"):
		return p
	case strings.HasPrefix(p, "30"):
		return "+" + p
	case len(p) == 10 && !strings.HasPrefix(p, "+"):
		return "+30" + p
	default:
		return p
	}
}

// ToCarrier converts a normalised address to the carrier wire model. The
// country defaults to GR.
func ToCarrier(addr domain.Address) carrier.Address {
	country := addr.Country
	if country == "" {
		country = "GR"
	}
	return carrier.Address{
		Name:         addr.Name,
		AddressLine1: addr.AddressLine1,
		AddressLine2: addr.AddressLine2,
		City:         addr.City,
		PostalCode:   addr.PostalCode,
		CountryCode:  country,
		Phone:        addr.Phone,
		Email:        addr.Email,
	}
}
