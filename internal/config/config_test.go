package config

import "testing"

func TestValidate_DevAllowsNoAuth(t *testing.T) {
	cfg := &Config{Env: "development", RateLimitRPS: 10, RateLimitBurst: 20}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ProductionRequiresAuth(t *testing.T) {
	cfg := &Config{Env: "production", RateLimitRPS: 10, RateLimitBurst: 20}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when production has no auth configuration")
	}

	cfg.JWTSigningKey = "secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error with signing key set: %v", err)
	}
}

func TestValidate_RateLimits(t *testing.T) {
	cfg := &Config{Env: "development", RateLimitRPS: 0, RateLimitBurst: 20}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero RATE_LIMIT_RPS")
	}

	cfg = &Config{Env: "development", RateLimitRPS: 10, RateLimitBurst: 0}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero RATE_LIMIT_BURST")
	}
}

func TestIsDev(t *testing.T) {
	cfg := &Config{Env: "development"}
	if !cfg.IsDev() {
		t.Error("expected IsDev for ENV=development")
	}
	if cfg.IsProduction() {
		t.Error("did not expect IsProduction for ENV=development")
	}

	cfg.Env = "production"
	if cfg.IsDev() {
		t.Error("did not expect IsDev for ENV=production")
	}
	if !cfg.IsProduction() {
		t.Error("expected IsProduction for ENV=production")
	}
}
