package models

import "testing"

func TestProRataShare(t *testing.T) {
	// 500_000_000 committed against a fully subscribed 2_000_000_000 cap
	// with 1_000_000_000 tokens for sale pays exactly 250_000_000.
	got := ProRataShare(500_000_000, 1_000_000_000, 2_000_000_000)
	if got != 250_000_000 {
		t.Errorf("share = %d; want 250000000", got)
	}
}

func TestProRataShare_FloorsRemainder(t *testing.T) {
	// 1*10/3 = 3.33…, floors to 3.
	if got := ProRataShare(1, 10, 3); got != 3 {
		t.Errorf("share = %d; want 3", got)
	}
}

func TestProRataShare_No64BitOverflow(t *testing.T) {
	// amount * tokensForSale overflows uint64; the result still fits.
	const big = uint64(1) << 62
	got := ProRataShare(big, 4, big)
	if got != 4 {
		t.Errorf("share = %d; want 4", got)
	}
}

func TestProRataShare_ZeroTotal(t *testing.T) {
	if got := ProRataShare(100, 100, 0); got != 0 {
		t.Errorf("share = %d; want 0", got)
	}
}

func TestPresaleStatus(t *testing.T) {
	p := &Presale{StartTime: 100, EndTime: 200, HardCap: 1000}

	if got := p.Status(50); got != StatusUpcoming {
		t.Errorf("status = %q; want %q", got, StatusUpcoming)
	}
	if got := p.Status(150); got != StatusOpen {
		t.Errorf("status = %q; want %q", got, StatusOpen)
	}
	if got := p.Status(250); got != StatusEnded {
		t.Errorf("status = %q; want %q", got, StatusEnded)
	}

	p.TotalCommitted = 1000
	if got := p.Status(150); got != StatusEnded {
		t.Errorf("status at cap = %q; want %q", got, StatusEnded)
	}

	p.Finalized = true
	if got := p.Status(150); got != StatusFinalized {
		t.Errorf("status = %q; want %q", got, StatusFinalized)
	}
}
