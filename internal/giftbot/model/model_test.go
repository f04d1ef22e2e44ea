package model

import (
	"math"
	"testing"
)

func TestParseSponsorKind(t *testing.T) {
	tests := []struct {
		raw  string
		want SponsorKind
	}{
		{"channel", SponsorKindChannel},
		{" BOT ", SponsorKindBot},
		{"link", SponsorKindLink},
		{"", SponsorKindChannel},
		{"unknown", SponsorKindChannel},
	}
	for _, tt := range tests {
		if got := ParseSponsorKind(tt.raw); got != tt.want {
			t.Errorf("ParseSponsorKind(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestSponsor_Checkable(t *testing.T) {
	tests := []struct {
		name    string
		sponsor Sponsor
		want    bool
	}{
		{"channel with id", Sponsor{Kind: SponsorKindChannel, ChannelID: -100}, true},
		{"channel without id", Sponsor{Kind: SponsorKindChannel}, false},
		{"bot", Sponsor{Kind: SponsorKindBot, ChannelID: -100}, false},
		{"link", Sponsor{Kind: SponsorKindLink}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sponsor.Checkable(); got != tt.want {
				t.Errorf("Checkable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSponsor_Link(t *testing.T) {
	if got := (Sponsor{InviteLink: "https://t.me/+abc", ChannelUsername: "x"}).Link(); got != "https://t.me/+abc" {
		t.Errorf("invite link should win, got %s", got)
	}
	if got := (Sponsor{ChannelUsername: "@news"}).Link(); got != "https://t.me/news" {
		t.Errorf("expected username link, got %s", got)
	}
	if got := (Sponsor{}).Link(); got != "" {
		t.Errorf("expected empty link, got %s", got)
	}
}

func TestInventoryStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to InventoryStatus
		want     bool
	}{
		{InventoryStatusWon, InventoryStatusWithdrawPending, true},
		{InventoryStatusWithdrawPending, InventoryStatusWithdrawn, true},
		{InventoryStatusWon, InventoryStatusWithdrawn, false},
		{InventoryStatusWithdrawn, InventoryStatusWon, false},
		{InventoryStatusWithdrawPending, InventoryStatusWon, false},
		{InventoryStatusWon, InventoryStatusWon, false},
		{InventoryStatus("bogus"), InventoryStatusWon, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestSettings_ClampedRevealProbability(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0.25, 0.25},
		{3, 1},
		{math.NaN(), 0},
		{math.Inf(1), 1},
		{math.Inf(-1), 0},
	}
	for _, tt := range tests {
		if got := (Settings{RevealProbability: tt.in}).ClampedRevealProbability(); got != tt.want {
			t.Errorf("clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGameSession_RevealAllGifts(t *testing.T) {
	gifts := make([]*CellGift, CellCount)
	gifts[3] = &CellGift{GiftID: 1, Title: "Bear"}
	gifts[35] = &CellGift{GiftID: 2, Title: "Rose"}

	session := &GameSession{Board: NewBoard(gifts)}
	if !session.Board.Valid() {
		t.Fatal("new board should be valid")
	}
	if session.HiddenGiftCount() != 2 {
		t.Fatalf("expected 2 hidden gifts, got %d", session.HiddenGiftCount())
	}

	session.RevealAllGifts()
	for i, opened := range session.Board.Opened {
		want := i == 3 || i == 35
		if opened != want {
			t.Errorf("cell %d opened = %v, want %v", i, opened, want)
		}
	}
}
