package models

import "testing"

func TestTierRank(t *testing.T) {
	if TierRank(TierFree) >= TierRank(TierPro) {
		t.Fatalf("expected pro to outrank free")
	}
	if TierRank(TierPro) >= TierRank(TierElite) {
		t.Fatalf("expected elite to outrank pro")
	}
	if TierRank(Tier("garbage")) != TierRank(TierFree) {
		t.Fatalf("expected unknown tier to rank as free")
	}
}

func TestCompareTiers(t *testing.T) {
	tests := []struct {
		a, b Tier
		want int
	}{
		{TierFree, TierPro, -1},
		{TierElite, TierPro, 1},
		{TierPro, TierPro, 0},
		{TierFree, TierFree, 0},
	}

	for _, tt := range tests {
		if got := CompareTiers(tt.a, tt.b); got != tt.want {
			t.Fatalf("CompareTiers(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestMaxTier(t *testing.T) {
	if got := MaxTier(TierPro, TierElite); got != TierElite {
		t.Fatalf("MaxTier(pro, elite) = %q, want elite", got)
	}
	if got := MaxTier(TierElite, TierPro); got != TierElite {
		t.Fatalf("MaxTier(elite, pro) = %q, want elite", got)
	}
	if got := MaxTier(TierFree, TierFree); got != TierFree {
		t.Fatalf("MaxTier(free, free) = %q, want free", got)
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		in   string
		want Tier
	}{
		{"free", TierFree},
		{"pro", TierPro},
		{"elite", TierElite},
		{"ELITE", TierElite},
		{"  pro  ", TierPro},
		{"premium", TierFree},
		{"", TierFree},
	}

	for _, tt := range tests {
		if got := ParseTier(tt.in); got != tt.want {
			t.Fatalf("ParseTier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsUpgradeTier(t *testing.T) {
	if IsUpgradeTier(TierFree) {
		t.Fatalf("free is not an upgrade tier")
	}
	if !IsUpgradeTier(TierPro) || !IsUpgradeTier(TierElite) {
		t.Fatalf("pro and elite are upgrade tiers")
	}
}
