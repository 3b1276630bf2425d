package kernel

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrAddressIsNotConstructed = errors.New("Address must be created via NewAddress constructor")
	ErrContactIsNotConstructed = errors.New("Contact must be created via NewContact constructor")

	phonePattern      = regexp.MustCompile(`^[0-9+\-\s]{1,30}$`)
	unitPattern       = regexp.MustCompile(`^#?\d{1,3}(-\d{1,3})?$`)
	postalCodePattern = regexp.MustCompile(`^\d{6}$`)
)

const (
	minNameLength   = 2
	minStreetLength = 3
)

// Address is a Singapore delivery or pick-up address.
type Address struct {
	street     string
	unit       string
	postalCode string

	guard guard.ConstructorGuard
}

// NewAddress validates street (at least 3 characters), the optional unit
// ("#12-34") and a 6-digit postal code.
func NewAddress(street, unit, postalCode string) (Address, error) {
	a := Address{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		a.setStreet(street),
		a.setUnit(unit),
		a.setPostalCode(postalCode),
	); err != nil {
		return Address{}, err
	}

	return a, nil
}

func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

func (a Address) Street() string {
	return a.street
}

func (a Address) Unit() string {
	return a.unit
}

func (a Address) PostalCode() string {
	return a.postalCode
}

// Sector is the first two digits of the postal code.
func (a Address) Sector() string {
	return a.postalCode[:2]
}

// FreeText joins street and unit, the text searched for restricted-area keywords.
func (a Address) FreeText() string {
	return strings.TrimSpace(a.street + " " + a.unit)
}

func (a *Address) setStreet(street string) error {
	street = strings.TrimSpace(street)
	if street == "" {
		return errs.NewValueIsRequiredError("street")
	}
	if utf8.RuneCountInString(street) < minStreetLength {
		return errs.NewValueIsInvalidErrorWithCause("street", fmt.Errorf("must be at least %d characters", minStreetLength))
	}

	a.street = street
	return nil
}

func (a *Address) setUnit(unit string) error {
	unit = strings.TrimSpace(unit)
	if unit != "" && !unitPattern.MatchString(unit) {
		return errs.NewValueIsInvalidErrorWithCause("unit", fmt.Errorf("%q is not a unit number like #12-34", unit))
	}

	a.unit = unit
	return nil
}

func (a *Address) setPostalCode(postalCode string) error {
	postalCode = strings.TrimSpace(postalCode)
	if postalCode == "" {
		return errs.NewValueIsRequiredError("postal code")
	}
	if !postalCodePattern.MatchString(postalCode) {
		return errs.NewValueIsInvalidErrorWithCause("postal code", fmt.Errorf("%q must be 6 digits", postalCode))
	}

	a.postalCode = postalCode
	return nil
}

// Contact identifies a sender or a recipient together with their address.
type Contact struct {
	name    string
	email   string
	phone   string
	address Address

	guard guard.ConstructorGuard
}

// NewContact validates name, email, phone and that address was constructed.
func NewContact(name, email, phone string, address Address) (Contact, error) {
	c := Contact{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		c.setName(name),
		c.setEmail(email),
		c.setPhone(phone),
		c.setAddress(address),
	); err != nil {
		return Contact{}, err
	}

	return c, nil
}

func (c Contact) Validate() error {
	return c.guard.Validate(ErrContactIsNotConstructed)
}

func (c Contact) Name() string {
	return c.name
}

func (c Contact) Email() string {
	return c.email
}

func (c Contact) Phone() string {
	return c.phone
}

func (c Contact) Address() Address {
	return c.address
}

func (c *Contact) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	if utf8.RuneCountInString(name) < minNameLength {
		return errs.NewValueIsInvalidErrorWithCause("name", fmt.Errorf("must be at least %d characters", minNameLength))
	}

	c.name = name
	return nil
}

func (c *Contact) setEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errs.NewValueIsRequiredError("email")
	}

	parsed, err := mail.ParseAddress(email)
	if err != nil || parsed.Address != email {
		return errs.NewValueIsInvalidErrorWithCause("email", fmt.Errorf("%q is not an email address", email))
	}

	c.email = email
	return nil
}

func (c *Contact) setPhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return errs.NewValueIsRequiredError("phone")
	}
	if !phonePattern.MatchString(phone) {
		return errs.NewValueIsInvalidErrorWithCause("phone", fmt.Errorf("%q is not a phone number", phone))
	}

	c.phone = phone
	return nil
}

func (c *Contact) setAddress(address Address) error {
	if err := address.Validate(); err != nil {
		return err
	}

	c.address = address
	return nil
}
