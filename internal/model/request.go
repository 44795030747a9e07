package model

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is used when a phone number is given without a country prefix.
var DefaultPhoneRegion = "US"

var (
	totpCodePattern     = regexp.MustCompile(`^[0-9]{6}$`)
	militaryTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

type SignupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone,omitempty"`
}

func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&r.Phone, validation.By(validPhone)),
	)
}

// Normalize trims input and rewrites the phone number to E.164.
// It must run after Validate.
func (r *SignupRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	if r.Phone == "" {
		return
	}
	if num, err := phonenumbers.Parse(r.Phone, DefaultPhoneRegion); err == nil {
		r.Phone = phonenumbers.Format(num, phonenumbers.E164)
	}
}

func validPhone(value interface{}) error {
	raw, _ := value.(string)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	num, err := phonenumbers.Parse(raw, DefaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return errors.New("must be a valid phone number")
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Token    string `json:"token,omitempty"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Token, validation.Match(totpCodePattern).Error("must be a 6 digit code")),
	)
}

type ValidateTokenRequest struct {
	Token string `json:"token"`
}

func (r ValidateTokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
	)
}

type CreateSongRequest struct {
	Title       string   `json:"title"`
	Artists     []string `json:"artists"`
	ReleaseDate string   `json:"releaseDate"`
	Duration    string   `json:"duration"`
	Lyrics      *string  `json:"lyrics,omitempty"`
}

func (r CreateSongRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Artists, validation.Required, validation.By(validIDs)),
		validation.Field(&r.ReleaseDate, validation.Required, validation.Date(DateLayout)),
		validation.Field(&r.Duration, validation.Required, validation.Match(militaryTimePattern).Error("must be in HH:MM format")),
	)
}

type UpdateSongRequest struct {
	Title       *string  `json:"title,omitempty"`
	Artists     []string `json:"artists,omitempty"`
	ReleaseDate *string  `json:"releaseDate,omitempty"`
	Duration    *string  `json:"duration,omitempty"`
	Lyrics      *string  `json:"lyrics,omitempty"`
}

func (r UpdateSongRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.Artists, validation.By(validIDs)),
		validation.Field(&r.ReleaseDate, validation.NilOrNotEmpty, validation.Date(DateLayout)),
		validation.Field(&r.Duration, validation.NilOrNotEmpty, validation.Match(militaryTimePattern).Error("must be in HH:MM format")),
	)
}

type CreatePlaylistRequest struct {
	Name  string   `json:"name"`
	Songs []string `json:"songs"`
}

func (r CreatePlaylistRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Songs, validation.Required, validation.By(validIDs)),
	)
}

func validIDs(value interface{}) error {
	ids, _ := value.([]string)
	for _, id := range ids {
		if !IsValidID(id) {
			return errors.New("must contain only valid ids")
		}
	}
	return nil
}

// IsValidID reports whether id is a well-formed record identifier.
func IsValidID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}
