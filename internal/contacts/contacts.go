// Package contacts implements the in-memory contact book and its validation rules.
package contacts

import (
	"errors"
	"regexp"
	"strings"

	"github.com/smileynet/toolbox/internal/logger"
)

// Validation errors, in the order Validate checks them.
var (
	ErrRequired    = errors.New("contacts: name and phone are required")
	ErrEmptyName   = errors.New("contacts: name should be a non-empty string")
	ErrPhoneFormat = errors.New("contacts: phone number must be 10 digits")
)

// Store errors.
var (
	ErrExists   = errors.New("contacts: already exists")
	ErrNotFound = errors.New("contacts: not found")
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// Contact is a single name/phone entry.
type Contact struct {
	Name  string
	Phone string
}

// Validate checks c against the contact rules in order and returns the first
// violation, or nil.
func Validate(c Contact) error {
	if c.Phone == "" {
		return ErrRequired
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !phonePattern.MatchString(c.Phone) {
		return ErrPhoneFormat
	}
	return nil
}

// IsValidation reports whether err is one of the Validate errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrRequired) || errors.Is(err, ErrEmptyName) || errors.Is(err, ErrPhoneFormat)
}

// Result describes a successful mutation.
type Result struct {
	Added   bool
	Updated bool
	// Problem is the validation error of a contact stored in permissive mode.
	Problem error
}

// Invalid reports whether the stored contact failed validation.
func (r Result) Invalid() bool {
	return r.Problem != nil
}

// Option configures a Book.
type Option func(*Book)

// WithPermissive stores contacts even when they fail validation. The failure
// is still reported through Result.Problem.
func WithPermissive() Option {
	return func(b *Book) {
		b.permissive = true
	}
}

// Book is an ordered contact list owned by a single caller. It is not safe
// for concurrent use.
type Book struct {
	contacts   []Contact
	permissive bool
}

// NewBook creates an empty Book.
func NewBook(opts ...Option) *Book {
	b := &Book{}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Permissive reports whether invalid contacts are stored.
func (b *Book) Permissive() bool {
	return b.permissive
}

// Add appends c unless an identical record is already stored.
func (b *Book) Add(c Contact) (Result, error) {
	problem, err := b.check(c)
	if err != nil {
		return Result{}, err
	}
	for _, existing := range b.contacts {
		if existing == c {
			return Result{Problem: problem}, ErrExists
		}
	}
	b.contacts = append(b.contacts, c)
	logger.L().Debug("contacts.add", "name", c.Name, "count", len(b.contacts))
	return Result{Added: true, Problem: problem}, nil
}

// Change replaces the first contact whose name equals c.Name.
func (b *Book) Change(c Contact) (Result, error) {
	problem, err := b.check(c)
	if err != nil {
		return Result{}, err
	}
	for i := range b.contacts {
		if b.contacts[i].Name == c.Name {
			b.contacts[i] = c
			logger.L().Debug("contacts.change", "name", c.Name, "index", i)
			return Result{Updated: true, Problem: problem}, nil
		}
	}
	return Result{Problem: problem}, ErrNotFound
}

// Phone returns the phone of the first contact named name.
func (b *Book) Phone(name string) (string, error) {
	for _, c := range b.contacts {
		if c.Name == name {
			return c.Phone, nil
		}
	}
	logger.L().Debug("contacts.lookup", "name", name, "found", false)
	return "", ErrNotFound
}

// All returns a copy of the contacts in insertion order.
func (b *Book) All() []Contact {
	out := make([]Contact, len(b.contacts))
	copy(out, b.contacts)
	return out
}

// Len returns the number of stored contacts.
func (b *Book) Len() int {
	return len(b.contacts)
}

// check validates c. In strict mode a violation is returned as err; in
// permissive mode it is returned as problem and the mutation proceeds.
func (b *Book) check(c Contact) (problem, err error) {
	verr := Validate(c)
	if verr == nil {
		return nil, nil
	}
	if b.permissive {
		return verr, nil
	}
	return nil, verr
}
