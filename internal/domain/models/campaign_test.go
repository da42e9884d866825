package models

import (
	"testing"
	"time"
)

func TestCampaignStatus(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"before start", start.Add(-time.Nanosecond), CampaignExpired},
		{"at start", start, CampaignActive},
		{"inside window", start.Add(72 * time.Hour), CampaignActive},
		{"at end", end, CampaignActive},
		{"after end", end.Add(time.Nanosecond), CampaignExpired},
		{"same instant other zone", start.In(time.FixedZone("IST", 5*3600+1800)), CampaignActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CampaignStatus(tt.now, start, end); got != tt.want {
				t.Errorf("CampaignStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCampaignStatus_SingleInstantWindow(t *testing.T) {
	at := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if got := CampaignStatus(at, at, at); got != CampaignActive {
		t.Errorf("start == end == now: got %q, want %q", got, CampaignActive)
	}
	if got := CampaignStatus(at.Add(time.Second), at, at); got != CampaignExpired {
		t.Errorf("one second later: got %q, want %q", got, CampaignExpired)
	}
}

func TestRefreshStatus(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	c := Campaign{StartDate: start, EndDate: start.Add(24 * time.Hour), Status: CampaignActive}

	if c.RefreshStatus(start.Add(time.Hour)) {
		t.Error("status unchanged inside the window should report false")
	}
	if !c.RefreshStatus(start.Add(48 * time.Hour)) {
		t.Error("status change after the window should report true")
	}
	if c.Status != CampaignExpired {
		t.Errorf("Status = %q, want %q", c.Status, CampaignExpired)
	}
}
