package crypto

import "testing"

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if err := CheckPassword(hash, "secret"); err != nil {
		t.Fatalf("expected password to match")
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatalf("expected password mismatch")
	}
}

func TestKYCDigestStable(t *testing.T) {
	first, err := KYCDigest(map[string]string{"name": "Asha Rao", "passport": "N1234567"})
	if err != nil {
		t.Fatalf("digest error: %v", err)
	}
	second, err := KYCDigest(map[string]string{"passport": "N1234567", "name": "Asha Rao"})
	if err != nil {
		t.Fatalf("digest error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical digests for identical fields, got %s and %s", first, second)
	}
	if len(first) != 2+64 || first[:2] != "0x" {
		t.Fatalf("unexpected digest format: %s", first)
	}

	changed, err := KYCDigest(map[string]string{"name": "Asha Rao", "passport": "N7654321"})
	if err != nil {
		t.Fatalf("digest error: %v", err)
	}
	if changed == first {
		t.Fatalf("expected different digest for different fields")
	}
}
