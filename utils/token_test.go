package utils

import (
	"testing"
)

func TestJwtGenerateAndValidate(t *testing.T) {
	t.Setenv("API_SECRET", "test-secret")
	t.Setenv("TOKEN_HOUR_LIFESPAN", "1")

	token, err := JwtGenerate(42, "tenant-abc", "ADJUSTER")
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}

	parsed, err := JwtValidate(token)
	if err != nil {
		t.Fatalf("JwtValidate: %v", err)
	}
	if !parsed.Valid {
		t.Fatal("token should be valid")
	}

	claims, ok := parsed.Claims.(*JwtCustomClaim)
	if !ok {
		t.Fatalf("unexpected claims type %T", parsed.Claims)
	}
	if claims.UserId != 42 {
		t.Fatalf("user id expected 42, got %d", claims.UserId)
	}
	if claims.TenantId != "tenant-abc" {
		t.Fatalf("tenant id expected tenant-abc, got %q", claims.TenantId)
	}
	if claims.Role != "ADJUSTER" {
		t.Fatalf("role expected ADJUSTER, got %q", claims.Role)
	}
}

func TestJwtValidate_RejectsTampering(t *testing.T) {
	t.Setenv("API_SECRET", "test-secret")

	token, err := JwtGenerate(1, "tenant-a", "USER")
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}

	if _, err := JwtValidate(token + "x"); err == nil {
		t.Fatal("expected error for tampered signature")
	}

	// A token signed under a different secret must not validate.
	t.Setenv("API_SECRET", "other-secret")
	parsed, err := JwtValidate(token)
	if err == nil && parsed.Valid {
		t.Fatal("expected token signed with old secret to be rejected")
	}
}
