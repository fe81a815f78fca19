package structures

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want CanonicalType
	}{
		{"Nexus", TypeBase},
		{"command-center", TypeBase},
		{"Command Center", TypeBase},
		{"HATCHERY", TypeBase},
		{"pylon", TypeSupply},
		{"supply_depot", TypeSupply},
		{"overlord", TypeSupply},
		{"gateway", TypeBarracks},
		{"Spawning Pool", TypeBarracks},
		{"robotics-facility", TypeFactory},
		{"roach_warren", TypeFactory},
		{"assimilator", TypeGasExtractor},
		{"  Refinery ", TypeGasExtractor},
		{"gasExtractor", TypeGasExtractor},
		{"", TypeBase},
		{"unknown", TypeBase},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for alias := range aliases {
		once := Normalize(alias)
		if twice := Normalize(string(once)); twice != once {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", alias, twice, once)
		}
	}
}

func TestResolveProfileCoversAllTypes(t *testing.T) {
	seen := make(map[TypeProfile]CanonicalType)
	for _, ct := range AllTypes() {
		p := ResolveProfile(string(ct))
		if p.Type != ct {
			t.Errorf("ResolveProfile(%q).Type = %q", ct, p.Type)
		}
		if p.VisualScale <= 0 || p.ClickHitboxSize <= 0 || p.HitboxHeight <= 0 {
			t.Errorf("%q has non-positive scale/hitbox: %+v", ct, p)
		}
		b := p.CollisionBox
		if b.Width < 0 || b.Height < 0 || b.Depth < 0 {
			t.Errorf("%q has negative collision box: %+v", ct, b)
		}
		if other, dup := seen[p]; dup {
			t.Errorf("%q and %q share the same profile", ct, other)
		}
		seen[p] = ct
	}

	if !ResolveProfile("assimilator").CollisionBox.IsZero() {
		t.Error("gasExtractor collision box should be all-zero")
	}
	if ResolveProfile("Nexus").DisplayName != "Command Center / Hatchery / Nexus" {
		t.Errorf("base display name = %q", ResolveProfile("Nexus").DisplayName)
	}
}

func TestHalfSizeAndToken(t *testing.T) {
	tests := []struct {
		t         CanonicalType
		wantHalf  float32
		wantToken string
	}{
		{TypeBase, 3, "BASE"},
		{TypeFactory, 2.25, "FACTORY"},
		{TypeGasExtractor, 0, "GAS_EXTRACTOR"},
	}
	for _, tt := range tests {
		if got := ProfileOf(tt.t).HalfSize(); got != tt.wantHalf {
			t.Errorf("ProfileOf(%q).HalfSize() = %v, want %v", tt.t, got, tt.wantHalf)
		}
		if got := tt.t.Token(); got != tt.wantToken {
			t.Errorf("%q.Token() = %q, want %q", tt.t, got, tt.wantToken)
		}
	}
	if ProfileOf("bogus").Type != TypeBase {
		t.Error("ProfileOf(unknown) should fall back to base")
	}
}
