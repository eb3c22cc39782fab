package domain

import "testing"

func TestIsValidDomain(t *testing.T) {
	valid := []string{"example.com", "sub.example.com", "a-b.co"}
	for _, d := range valid {
		if !IsValidDomain(d) {
			t.Errorf("expected %q to be valid", d)
		}
	}

	invalid := []string{"", "localhost", "-bad.com", "bad-.com", "192.168.0.1", "toolong." + string(make([]byte, 64))}
	for _, d := range invalid {
		if IsValidDomain(d) {
			t.Errorf("expected %q to be invalid", d)
		}
	}
}
