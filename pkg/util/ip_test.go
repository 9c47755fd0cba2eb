package util

import (
	"net/netip"
	"testing"
)

func TestParseIP(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "ipv4", in: "10.82.250.129", want: "10.82.250.129"},
		{name: "ipv6 upper case", in: "2001:DB8::1", want: "2001:db8::1"},
		{name: "zone stripped", in: "FE80::1%Gi0/1", want: "fe80::1"},
		{name: "mapped", in: "::ffff:10.0.0.1", want: "10.0.0.1"},
		{name: "padded", in: "  10.0.0.1 ", want: "10.0.0.1"},
		{name: "garbage", in: "Incomplete", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIP(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseIP(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got.String() != tt.want {
				t.Errorf("ParseIP(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestIPVersion(t *testing.T) {
	tests := []struct {
		addr netip.Addr
		want int
	}{
		{netip.MustParseAddr("10.0.0.1"), 4},
		{netip.MustParseAddr("::ffff:10.0.0.1"), 4},
		{netip.MustParseAddr("2001:db8::1"), 6},
		{netip.Addr{}, 0},
	}
	for _, tt := range tests {
		if got := IPVersion(tt.addr); got != tt.want {
			t.Errorf("IPVersion(%v) = %d, want %d", tt.addr, got, tt.want)
		}
	}
}

func TestIsIPv6LinkLocal(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"fe80::1", true},
		{"FE80::21B:D4FF:FE1C:7A41", true},
		{"febf::1", true},
		{"fec0::1", false},
		{"2001:db8::1", false},
		{"169.254.1.1", false},
	}
	for _, tt := range tests {
		addr, err := ParseIP(tt.addr)
		if err != nil {
			t.Fatalf("ParseIP(%q): %v", tt.addr, err)
		}
		if got := IsIPv6LinkLocal(addr); got != tt.want {
			t.Errorf("IsIPv6LinkLocal(%s) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}

func TestMostSpecific(t *testing.T) {
	prefixes := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("10.82.250.128/26"),
		netip.MustParsePrefix("10.82.0.0/16"),
	}

	got, ok := MostSpecific(prefixes, netip.MustParseAddr("10.82.250.129"))
	if !ok || got.String() != "10.82.250.128/26" {
		t.Errorf("MostSpecific() = %v, %v; want 10.82.250.128/26", got, ok)
	}

	if _, ok := MostSpecific(prefixes, netip.MustParseAddr("192.168.0.1")); ok {
		t.Error("MostSpecific() should not match 192.168.0.1")
	}

	if !PrefixesContain(prefixes, netip.MustParseAddr("10.1.1.1")) {
		t.Error("PrefixesContain() should match 10.1.1.1")
	}
}

func TestCanonicalMAC(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "0000.0c9f.f002", want: "00:00:0c:9f:f0:02"},
		{in: "0024.B20E.FE0F", want: "00:24:b2:0e:fe:0f"},
		{in: "00-24-B2-0E-FE-0F", want: "00:24:b2:0e:fe:0f"},
		{in: "00:24:b2:0e:fe:0f", want: "00:24:b2:0e:fe:0f"},
		{in: "Incomplete", wantErr: true},
		{in: "-", wantErr: true},
		{in: "", wantErr: true},
		{in: "0000.0c9f", wantErr: true},
		{in: "02:00:00:00:00:00:00:01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CanonicalMAC(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CanonicalMAC(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CanonicalMAC(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
