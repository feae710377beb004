package catalog

import "testing"

func TestDefaultSignalEnergies(t *testing.T) {
	c := Default()
	cases := []struct {
		kind   SignalKind
		energy float64
	}{
		{SignalApprove, 50},
		{SignalReject, -50},
		{SignalEscalate, 25},
		{SignalAbstainHold, 0},
		{SignalBless, 80},
		{SignalVeto, -120},
	}
	for _, tc := range cases {
		spec, ok := c.Signal(tc.kind)
		if !ok {
			t.Fatalf("missing signal %s", tc.kind)
		}
		if spec.BaseEnergy != tc.energy {
			t.Fatalf("signal %s: expected base energy %f, got %f", tc.kind, tc.energy, spec.BaseEnergy)
		}
	}
}

func TestDefaultSentimentModifiers(t *testing.T) {
	c := Default()
	cases := []struct {
		tag        SentimentTag
		multiplier float64
		bias       float64
	}{
		{SentimentEnthusiastic, 1.5, 0.3},
		{SentimentSupportive, 1.2, 0.1},
		{SentimentNeutral, 1.0, 0},
		{SentimentUrgent, 1.25, 0.2},
		{SentimentSkeptical, 0.8, -0.1},
		{SentimentCritical, 1.2, -0.2},
		{SentimentHostile, 1.4, -0.3},
	}
	for _, tc := range cases {
		modifier, ok := c.Sentiment(tc.tag)
		if !ok {
			t.Fatalf("missing sentiment %s", tc.tag)
		}
		if modifier.Multiplier != tc.multiplier || modifier.Bias != tc.bias {
			t.Fatalf("sentiment %s: expected %f/%f, got %f/%f",
				tc.tag, tc.multiplier, tc.bias, modifier.Multiplier, modifier.Bias)
		}
	}
}

func TestDefaultRoleWeights(t *testing.T) {
	c := Default()
	cases := []struct {
		role   ParticipantRole
		weight float64
	}{
		{RolePrivileged, 2.0},
		{RoleStandard, 1.0},
		{RoleGuest, 0.5},
	}
	for _, tc := range cases {
		weight, ok := c.RoleWeight(tc.role)
		if !ok || weight != tc.weight {
			t.Fatalf("role %s: expected weight %f, got %f (ok=%v)", tc.role, tc.weight, weight, ok)
		}
	}
	if c.ValidRole("owner") {
		t.Fatalf("expected unknown role to be invalid")
	}
}
