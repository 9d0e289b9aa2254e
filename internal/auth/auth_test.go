package auth

import "testing"

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPassword("hunter22", hash) {
		t.Fatal("correct password rejected")
	}
	if CheckPassword("hunter23", hash) {
		t.Fatal("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret")

	token, err := m.Issue(42, true)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != 42 || !claims.IsAdmin {
		t.Fatalf("claims = %+v, want id=42 admin=true", claims)
	}
}

func TestVerifyRejectsForgedToken(t *testing.T) {
	m := NewTokenManager("test-secret")
	other := NewTokenManager("other-secret")

	token, err := other.Issue(1, false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(token); err == nil {
		t.Fatal("token signed with a different secret accepted")
	}
	if _, err := m.Verify("not-a-token"); err == nil {
		t.Fatal("garbage token accepted")
	}
}

func TestSessionCookie(t *testing.T) {
	c := SessionCookie("abc", false)
	if c.Name != SessionCookieName || c.Value != "abc" {
		t.Fatalf("unexpected cookie %+v", c)
	}
	if !c.HttpOnly {
		t.Fatal("session cookie must be http-only")
	}
	if c.Secure {
		t.Fatal("secure flag should follow the environment")
	}
	if c.MaxAge != int(SessionTTL.Seconds()) {
		t.Fatalf("MaxAge = %d, want %d", c.MaxAge, int(SessionTTL.Seconds()))
	}

	cleared := ClearSessionCookie(true)
	if cleared.MaxAge != -1 || cleared.Value != "" {
		t.Fatalf("clearing cookie should expire it, got %+v", cleared)
	}
}
