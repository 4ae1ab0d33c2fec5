package providers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/capread/pkg/lines"
)

type stubProvider struct {
	name        string
	validateErr error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Detect(ctx context.Context, image []byte, opts Options) ([]lines.Detection, error) {
	return nil, nil
}

type validatingProvider struct {
	stubProvider
}

func (v *validatingProvider) Validate() error { return v.validateErr }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubProvider{name: "Azure"})
	r.Register(&stubProvider{name: "google"})

	if !r.HasProvider("AZURE") {
		t.Error("expected case-insensitive lookup")
	}
	if r.HasProvider("tesseract") {
		t.Error("unexpected provider")
	}

	p, err := r.Get("azure")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "Azure" {
		t.Errorf("Get() returned %q", p.Name())
	}

	_, err = r.Get("missing")
	if err == nil {
		t.Fatal("expected error for missing provider")
	}
	if !strings.Contains(err.Error(), "azure, google") {
		t.Errorf("expected available providers in error, got: %v", err)
	}

	names := r.List()
	if len(names) != 2 || names[0] != "azure" || names[1] != "google" {
		t.Errorf("List() = %v", names)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(&stubProvider{name: "plain"}); err != nil {
		t.Errorf("provider without validator should pass, got %v", err)
	}

	want := errors.New("missing key")
	err := Validate(&validatingProvider{stubProvider{name: "v", validateErr: want}})
	if !errors.Is(err, want) {
		t.Errorf("Validate() = %v, want %v", err, want)
	}
}

func TestTruncateBody(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		maxLen   []int
		expected string
	}{
		{"short body", "ok", nil, "ok"},
		{"custom limit", "abcdef", []int{3}, "abc... (truncated)"},
		{"default limit", strings.Repeat("a", 501), nil, strings.Repeat("a", 500) + "... (truncated)"},
		{"non positive limit uses default", "abc", []int{0}, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateBody([]byte(tt.body), tt.maxLen...); got != tt.expected {
				t.Errorf("TruncateBody() = %q, want %q", got, tt.expected)
			}
		})
	}
}
