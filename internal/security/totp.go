package security

import (
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"
	"github.com/xlzd/gotp"
)

const (
	// TOTPStep is the RFC 6238 time step gotp's default TOTP uses.
	TOTPStep = 30 * time.Second

	// TOTPSkew is how many steps before and after the current one are accepted.
	TOTPSkew = 1

	totpSecretLength = 32
	totpDigits       = 6
	qrCodeSize       = 256
)

var (
	ErrInvalidTOTPSecret = errors.New("invalid totp secret")
	ErrInvalidTOTPCode   = errors.New("invalid totp code")
)

type TOTP struct {
	issuer string
	now    func() time.Time
}

func NewTOTP(issuer string) *TOTP {
	return &TOTP{issuer: issuer, now: time.Now}
}

// WithClock returns a copy of t reading time from now. Used by tests.
func (t *TOTP) WithClock(now func() time.Time) *TOTP {
	return &TOTP{issuer: t.issuer, now: now}
}

// GenerateSecret returns a fresh base32 shared secret.
func (t *TOTP) GenerateSecret() string {
	return gotp.RandomSecret(totpSecretLength)
}

// Verify checks code against secret for the current step and TOTPSkew steps
// either side. A malformed secret or code is an error, not a false result.
func (t *TOTP) Verify(secret string, code string) (verified bool, err error) {
	if err := validateSecret(secret); err != nil {
		return false, err
	}
	code = strings.TrimSpace(code)
	if len(code) != totpDigits || strings.Trim(code, "0123456789") != "" {
		return false, ErrInvalidTOTPCode
	}

	// gotp panics when it cannot decode the secret.
	defer func() {
		if recovered := recover(); recovered != nil {
			verified = false
			err = fmt.Errorf("%w: %v", ErrInvalidTOTPSecret, recovered)
		}
	}()

	otp := gotp.NewDefaultTOTP(secret)
	now := t.now().Unix()
	step := int64(TOTPStep / time.Second)

	matched := 0
	for offset := -TOTPSkew; offset <= TOTPSkew; offset++ {
		expected := otp.At(now + int64(offset)*step)
		matched |= subtle.ConstantTimeCompare([]byte(expected), []byte(code))
	}

	return matched == 1, nil
}

func (t *TOTP) ProvisioningURI(secret string, accountName string) (string, error) {
	if err := validateSecret(secret); err != nil {
		return "", err
	}
	return gotp.NewDefaultTOTP(secret).ProvisioningUri(accountName, t.issuer), nil
}

// QRCode renders the provisioning URI for secret as a PNG.
func (t *TOTP) QRCode(secret string, accountName string) ([]byte, error) {
	uri, err := t.ProvisioningURI(secret, accountName)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(uri, qrcode.Medium, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

func validateSecret(secret string) error {
	if strings.TrimSpace(secret) == "" {
		return ErrInvalidTOTPSecret
	}

	padded := secret
	if missing := len(padded) % 8; missing != 0 {
		padded += strings.Repeat("=", 8-missing)
	}
	if _, err := base32.StdEncoding.DecodeString(padded); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTOTPSecret, err)
	}
	return nil
}
