package featureflags

import "testing"

func TestManager_Enabled(t *testing.T) {
	m := NewManager("club_requests=on, direct_candidates=off, rollout=50%, bad=nope")

	if !m.Enabled(FlagClubRequests, 0) {
		t.Error("expected club_requests to be on")
	}
	if m.Enabled(FlagDirectCandidates, 7) {
		t.Error("expected direct_candidates to be off")
	}
	if m.Enabled("missing", 7) {
		t.Error("unknown flags must default to off")
	}
	if m.Enabled("bad", 7) {
		t.Error("unparseable values must default to off")
	}
	if m.Enabled("rollout", 0) {
		t.Error("percentage rollout must exclude anonymous users")
	}
}

func TestManager_RolloutIsDeterministic(t *testing.T) {
	m := NewManager("rollout=50%")

	for userID := uint(1); userID <= 20; userID++ {
		first := m.Enabled("rollout", userID)
		for i := 0; i < 5; i++ {
			if m.Enabled("rollout", userID) != first {
				t.Fatalf("rollout decision flapped for user %d", userID)
			}
		}
	}
}

func TestManager_RolloutBounds(t *testing.T) {
	m := NewManager("all=100%,none=0%")

	for userID := uint(1); userID <= 10; userID++ {
		if !m.Enabled("all", userID) {
			t.Fatalf("100%% rollout must include user %d", userID)
		}
		if m.Enabled("none", userID) {
			t.Fatalf("0%% rollout must exclude user %d", userID)
		}
	}
}

func TestManager_NilIsSafe(t *testing.T) {
	var m *Manager
	if m.Enabled(FlagClubRequests, 1) {
		t.Error("nil manager must report flags as off")
	}
}
