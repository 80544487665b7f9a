package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vivekprasad7/hc-youtube-backend/internal/common"
)

var testIdentity = Identity{
	ID:       "0d9f6c1e-5b8a-4c1f-9a57-1c2b3d4e5f60",
	Email:    "alice@example.com",
	Username: "alice",
	FullName: "Alice Liddell",
}

func withClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func TestAccessToken_RoundTrip(t *testing.T) {
	secret := []byte("access-secret")

	tok, err := GenerateAccessToken(testIdentity, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	got, err := ParseAccessToken(tok, secret)
	if err != nil {
		t.Fatalf("ParseAccessToken error: %v", err)
	}
	if got != testIdentity {
		t.Fatalf("identity mismatch: got %+v want %+v", got, testIdentity)
	}
}

func TestAccessToken_DeterministicForSameClock(t *testing.T) {
	withClock(t, time.Now())
	secret := []byte("access-secret")

	a, err := GenerateAccessToken(testIdentity, secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateAccessToken(testIdentity, secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("expected identical tokens for identical inputs")
	}
}

func TestRefreshToken_RoundTripAndUnique(t *testing.T) {
	withClock(t, time.Now())
	secret := []byte("refresh-secret")

	a, err := GenerateRefreshToken(testIdentity.ID, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateRefreshToken error: %v", err)
	}
	b, err := GenerateRefreshToken(testIdentity.ID, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateRefreshToken error: %v", err)
	}
	if a == b {
		t.Fatalf("two refresh tokens minted at the same instant must differ")
	}

	id, err := ParseRefreshToken(a, secret)
	if err != nil {
		t.Fatalf("ParseRefreshToken error: %v", err)
	}
	if id != testIdentity.ID {
		t.Fatalf("userID mismatch: got %q want %q", id, testIdentity.ID)
	}
}

func TestParse_Expired(t *testing.T) {
	secret := []byte("secret")
	issued := time.Now()
	withClock(t, issued)

	access, err := GenerateAccessToken(testIdentity, secret, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	refresh, err := GenerateRefreshToken(testIdentity.ID, secret, time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	now = func() time.Time { return issued.Add(2 * time.Minute) }

	if _, err := ParseAccessToken(access, secret); err != common.ErrTokenExpired {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
	if _, err := ParseRefreshToken(refresh, secret); err != common.ErrTokenExpired {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	tok, err := GenerateAccessToken(testIdentity, []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	_, err = ParseAccessToken(tok, []byte("wrong-secret"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for bad signature, got %v", err)
	}
}

func TestParse_KindsUseDistinctSecrets(t *testing.T) {
	refresh, err := GenerateRefreshToken(testIdentity.ID, []byte("refresh-secret"), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ParseAccessToken(refresh, []byte("access-secret")); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("refresh token must not pass as access token, got %v", err)
	}
}

func TestParse_KindIsCheckedWithSharedSecret(t *testing.T) {
	secret := []byte("shared-secret")

	refresh, err := GenerateRefreshToken(testIdentity.ID, secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	access, err := GenerateAccessToken(testIdentity, secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ParseAccessToken(refresh, secret); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("refresh token must not pass as access token, got %v", err)
	}
	if _, err := ParseRefreshToken(access, secret); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("access token must not pass as refresh token, got %v", err)
	}

	untyped, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           testIdentity.ID,
	}).SignedString(secret)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseAccessToken(untyped, secret); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("token without typ must be rejected, got %v", err)
	}
}

func TestParse_MalformedString(t *testing.T) {
	for _, s := range []string{"", "not.a.jwt", "abc"} {
		if _, err := ParseAccessToken(s, []byte("k")); !errors.Is(err, common.ErrInvalidToken) {
			t.Fatalf("%q: expected ErrInvalidToken, got %v", s, err)
		}
	}
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           testIdentity.ID,
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseAccessToken(none, []byte("k")); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("alg=none must be rejected, got %v", err)
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseAccessToken(hs512, []byte("k")); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("HS512 must be rejected, got %v", err)
	}
}

func TestParse_MissingSubjectOrExpiry(t *testing.T) {
	secret := []byte("k")

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Kind:             KindAccess,
	}).SignedString(secret)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseAccessToken(noID, secret); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("token without id must be rejected, got %v", err)
	}

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{Kind: KindRefresh, UserID: "u1"}).SignedString(secret)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseRefreshToken(noExp, secret); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("token without exp must be rejected, got %v", err)
	}
}
