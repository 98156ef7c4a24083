package oidc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const testIssuer = "https://issuer.example.com"

type keyServer struct {
	*httptest.Server
	signingKey jwk.Key
	fetches    atomic.Int32
}

func newKeyServer(t *testing.T) *keyServer {
	t.Helper()

	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	private, err := jwk.FromRaw(raw)
	if err != nil {
		t.Fatalf("jwk.FromRaw: %v", err)
	}
	_ = private.Set(jwk.KeyIDKey, "test-key")
	_ = private.Set(jwk.AlgorithmKey, jwa.RS256)

	public, err := jwk.PublicKeyOf(private)
	if err != nil {
		t.Fatalf("PublicKeyOf: %v", err)
	}
	_ = public.Set(jwk.KeyIDKey, "test-key")
	_ = public.Set(jwk.AlgorithmKey, jwa.RS256)

	set := jwk.NewSet()
	if err := set.AddKey(public); err != nil {
		t.Fatalf("AddKey: %v", err)
	}
	body, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal set: %v", err)
	}

	ks := &keyServer{signingKey: private}
	ks.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ks.fetches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(ks.Close)
	return ks
}

func (ks *keyServer) sign(t *testing.T, issuer, subject string, exp time.Time) string {
	t.Helper()

	tok := jwt.New()
	_ = tok.Set(jwt.IssuerKey, issuer)
	_ = tok.Set(jwt.SubjectKey, subject)
	_ = tok.Set(jwt.IssuedAtKey, time.Now().Add(-time.Minute))
	_ = tok.Set(jwt.ExpirationKey, exp)
	_ = tok.Set("email", "alice@example.com")
	_ = tok.Set("name", "Alice")

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256, ks.signingKey))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return string(signed)
}

func TestVerifier_Verify(t *testing.T) {
	t.Parallel()

	ks := newKeyServer(t)
	v := NewVerifier(NewJWKSManager(), testIssuer, ks.URL)

	claims, err := v.Verify(context.Background(), ks.sign(t, testIssuer, "user-123", time.Now().Add(time.Hour)))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Sub != "user-123" || claims.Email != "alice@example.com" || claims.Name != "Alice" {
		t.Errorf("unexpected claims %+v", claims)
	}
	if claims.Iss != testIssuer {
		t.Errorf("Iss = %q", claims.Iss)
	}
	if user := claims.User(); user.ID != "user-123" {
		t.Errorf("User().ID = %q", user.ID)
	}
}

func TestVerifier_Rejects(t *testing.T) {
	t.Parallel()

	ks := newKeyServer(t)
	v := NewVerifier(NewJWKSManager(), testIssuer, ks.URL)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong issuer", ks.sign(t, "https://evil.example.com", "user-123", time.Now().Add(time.Hour))},
		{"expired", ks.sign(t, testIssuer, "user-123", time.Now().Add(-time.Hour))},
		{"missing subject", ks.sign(t, testIssuer, "", time.Now().Add(time.Hour))},
		{"garbage", "not.a.token"},
	}
	for _, tt := range tests {
		if _, err := v.Verify(context.Background(), tt.token); err == nil {
			t.Errorf("%s: expected verification failure", tt.name)
		}
	}
}

func TestJWKSManager_Caches(t *testing.T) {
	t.Parallel()

	ks := newKeyServer(t)
	m := NewJWKSManager()
	for i := 0; i < 3; i++ {
		if _, err := m.GetJWKS(context.Background(), ks.URL); err != nil {
			t.Fatalf("GetJWKS: %v", err)
		}
	}
	if got := ks.fetches.Load(); got != 1 {
		t.Errorf("fetched %d times, want 1", got)
	}
}
