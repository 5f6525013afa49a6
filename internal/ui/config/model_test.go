package config

import (
	"testing"

	"github.com/nhle/modulesync/internal/model"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"https://canvas.example.edu", false},
		{"", true},
		{"canvas.example.edu", true},
		{"://bad", true},
	}
	for _, tt := range tests {
		if err := validateURL(tt.in); (err != nil) != tt.wantErr {
			t.Errorf("validateURL(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestValidatePerPage(t *testing.T) {
	for _, ok := range []string{"1", "50", " 100 "} {
		if err := validatePerPage(ok); err != nil {
			t.Errorf("validatePerPage(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"0", "101", "ten", ""} {
		if err := validatePerPage(bad); err == nil {
			t.Errorf("validatePerPage(%q) should fail", bad)
		}
	}
}

func TestResult_SharedAcrossCopies(t *testing.T) {
	cfg := model.DefaultAppConfig()
	m := New(*cfg)

	if _, ok := m.Result(); ok {
		t.Fatal("result should not be available before the form completes")
	}

	copied := m
	copied.values.baseURL = "https://canvas.example.edu/ "
	copied.values.token = " secret "
	copied.values.perPage = "25"
	m.done = true

	res, ok := m.Result()
	if !ok {
		t.Fatal("expected result")
	}
	if res.Config.Canvas.BaseURL != "https://canvas.example.edu" || res.Token != "secret" || res.Config.Canvas.PerPage != 25 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Config.Display.Theme != "auto" {
		t.Fatalf("theme = %q", res.Config.Display.Theme)
	}
}
