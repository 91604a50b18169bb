package signature

import "testing"

func TestVerify_RoundTrip(t *testing.T) {
	secret := "era-shared-secret"
	body := []byte(`{"steamid":"STEAM_1","key":"ABCD1234"}`)

	schemes := []Scheme{DigestScheme{}, HMACScheme{}}
	v := NewVerifier(secret)

	for _, s := range schemes {
		t.Run(s.Name(), func(t *testing.T) {
			header := s.Sign(secret, body)

			if !v.Verify(body, header) {
				t.Errorf("Verify = false, want true for %s signature", s.Name())
			}

			// Mutating any byte of the body must invalidate the signature.
			mutated := append([]byte(nil), body...)
			mutated[0] ^= 0x01
			if v.Verify(mutated, header) {
				t.Errorf("Verify = true for mutated body, want false")
			}
		})
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	body := []byte(`{"steamid":"STEAM_1"}`)
	header := HMACScheme{}.Sign("other-secret", body)

	v := NewVerifier("era-shared-secret")
	if v.Verify(body, header) {
		t.Error("Verify = true for signature from a different secret, want false")
	}
}

func TestVerify_PermissiveMode(t *testing.T) {
	v := NewVerifier("")

	if !v.Permissive() {
		t.Error("Permissive = false with empty secret, want true")
	}

	headers := []string{"", "garbage", HMACScheme{}.Sign("whatever", []byte("x"))}
	for _, h := range headers {
		if !v.Verify([]byte("any body"), h) {
			t.Errorf("Verify(%q) = false in permissive mode, want true", h)
		}
	}
}

func TestVerify_MissingHeader(t *testing.T) {
	v := NewVerifier("era-shared-secret")
	if v.Verify([]byte("body"), "") {
		t.Error("Verify = true with missing header and configured secret, want false")
	}
}

func TestVerify_MalformedHeader(t *testing.T) {
	v := NewVerifier("era-shared-secret")

	headers := []string{
		"not-a-signature",
		"!!!%%%",
		"deadbeef",
	}
	for _, h := range headers {
		if v.Verify([]byte("body"), h) {
			t.Errorf("Verify(%q) = true, want false", h)
		}
	}
}
