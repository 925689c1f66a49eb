package users

import "testing"

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher()

	hashed, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if hashed == "s3cret" {
		t.Fatal("hash must not be the plaintext")
	}

	if !h.Verify(hashed, "s3cret") {
		t.Fatal("expected verify to accept the original password")
	}
	if h.Verify(hashed, "wrong") {
		t.Fatal("expected verify to reject a wrong password")
	}
}

func TestHasher_SaltsEachHash(t *testing.T) {
	h := NewHasher()

	a, _ := h.Hash("s3cret")
	b, _ := h.Hash("s3cret")
	if a == b {
		t.Fatal("two hashes of the same password must differ")
	}
}
