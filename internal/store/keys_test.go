package store

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"a@b.com", "a@b.com"},
		{" A@B.com ", "a@b.com"},
		{"\tUser@Example.ORG\n", "user@example.org"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestAccountKeyStable(t *testing.T) {
	if AccountKey(" A@B.com ") != AccountKey("a@b.com") {
		t.Error("account key is not case/whitespace-insensitive")
	}
	if got, want := AccountKey("a@b.com"), "user:a@b.com"; got != want {
		t.Errorf("AccountKey = %q, want %q", got, want)
	}
}

func TestNamespacedKeys(t *testing.T) {
	email := " Person@Example.com "
	want := map[string]string{
		NotificationsKey(email): "settings:notifications:person@example.com",
		BillingKey(email):       "settings:billing:person@example.com",
		PlansKey(email):         "settings:plans:person@example.com",
	}
	for got, expected := range want {
		if got != expected {
			t.Errorf("got key %q, want %q", got, expected)
		}
	}
}

func TestAllKeysCoversEveryNamespace(t *testing.T) {
	keys := AllKeys("a@b.com")
	if len(keys) != 4 {
		t.Fatalf("expected 4 keys, got %d", len(keys))
	}
	if keys[0] != "user:a@b.com" {
		t.Errorf("account key must come first, got %q", keys[0])
	}
}
