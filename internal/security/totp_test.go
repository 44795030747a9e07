package security

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xlzd/gotp"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestTOTPVerifyWindow(t *testing.T) {
	t.Parallel()

	// Sits exactly on a step boundary: 1_700_000_010 / 30 = 56_666_667.
	now := time.Unix(1_700_000_010, 0)
	engine := NewTOTP("Music Catalog").WithClock(fixedClock(now))
	secret := engine.GenerateSecret()
	otp := gotp.NewDefaultTOTP(secret)

	tests := []struct {
		name   string
		offset time.Duration
		want   bool
	}{
		{name: "current step", offset: 0, want: true},
		{name: "one step behind", offset: -TOTPStep, want: true},
		{name: "one step ahead", offset: TOTPStep, want: true},
		{name: "three steps behind", offset: -3 * TOTPStep, want: false},
		{name: "three steps ahead", offset: 3 * TOTPStep, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code := otp.At(now.Add(tc.offset).Unix())
			verified, err := engine.Verify(secret, code)
			require.NoError(t, err)
			require.Equal(t, tc.want, verified)
		})
	}
}

func TestTOTPVerifyRejectsCodeFromOtherSecret(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_010, 0)
	engine := NewTOTP("Music Catalog").WithClock(fixedClock(now))
	secret := engine.GenerateSecret()
	other := engine.GenerateSecret()
	require.NotEqual(t, secret, other)

	code := gotp.NewDefaultTOTP(other).At(now.Unix())
	if code == gotp.NewDefaultTOTP(secret).At(now.Unix()) {
		t.Skip("codes collided for independent secrets")
	}

	verified, err := engine.Verify(secret, code)
	require.NoError(t, err)
	require.False(t, verified)
}

func TestTOTPVerifyMalformedInput(t *testing.T) {
	t.Parallel()

	engine := NewTOTP("Music Catalog")
	secret := engine.GenerateSecret()

	_, err := engine.Verify(secret, "12ab56")
	require.ErrorIs(t, err, ErrInvalidTOTPCode)

	_, err = engine.Verify(secret, "1234567")
	require.ErrorIs(t, err, ErrInvalidTOTPCode)

	_, err = engine.Verify("not base32 !!", "123456")
	require.ErrorIs(t, err, ErrInvalidTOTPSecret)

	_, err = engine.Verify("", "123456")
	require.ErrorIs(t, err, ErrInvalidTOTPSecret)
}

func TestTOTPGenerateSecretIsBase32AndFresh(t *testing.T) {
	t.Parallel()

	engine := NewTOTP("Music Catalog")
	first := engine.GenerateSecret()
	second := engine.GenerateSecret()

	require.Len(t, first, totpSecretLength)
	require.NotEqual(t, first, second)
	require.NoError(t, validateSecret(first))
}

func TestTOTPProvisioning(t *testing.T) {
	t.Parallel()

	engine := NewTOTP("Music Catalog")
	secret := engine.GenerateSecret()

	uri, err := engine.ProvisioningURI(secret, "a@b.com")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "otpauth://totp/"))
	require.Contains(t, uri, "secret="+secret)

	png, err := engine.QRCode(secret, "a@b.com")
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = engine.QRCode("", "a@b.com")
	require.ErrorIs(t, err, ErrInvalidTOTPSecret)
}
