package config

import "testing"

func TestValidate_RequiresPortAndSecret(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected empty config to fail validation")
	}

	cfg = &Config{Port: "8460"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing JWT secret to fail validation")
	}
}

func TestValidate_ProductionRejectsDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Port:      "8460",
		JWTSecret: "your-secret-key-change-in-production",
		Env:       "production",
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected default JWT secret to be rejected in production")
	}

	cfg.JWTSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected short JWT secret to be rejected in production")
	}

	cfg.JWTSecret = "a-sufficiently-long-production-grade-secret"
	cfg.DBPassword = "password"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected default DB password to be rejected in production")
	}

	cfg.DBPassword = "s3cure-enough-for-a-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid production config, got %v", err)
	}
}

func TestValidate_DevelopmentIsLenient(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Port:      "8460",
		JWTSecret: "dev-secret",
		Env:       "development",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected development config to validate, got %v", err)
	}
}
