package ifname

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"GigabitEthernet0/3.2335", "Gi0/3.2335"},
		{"Gi0/3", "Gi0/3"},
		{"Gi9/22", "Gi9/22"},
		{"GigabitEthernet9/22", "Gi9/22"},
		{"gi9/22", "Gi9/22"},
		{"GI9/22", "Gi9/22"},
		{"FastEthernet0/1", "Fa0/1"},
		{"Fa0/1", "Fa0/1"},
		{"TenGigabitEthernet1/0/1", "Te1/0/1"},
		{"Port-channel12", "Po12"},
		{"Po12", "Po12"},
		{"Vlan100", "Vl100"},
		{"Serial0/0/0:1", "Se0/0/0:1"},
		{"GigabitEthernet 0/1", "Gi0/1"},
		{"  Gi0/1 ", "Gi0/1"},
		{"CPU", "CPU"},
		{"Router", "Router"},
		{"", ""},
		{"0/1", "0/1"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	names := []string{
		"GigabitEthernet0/3.2335",
		"Gi0/3",
		"Gi9/22",
		"Port-channel12",
		"Vlan100",
		"GigabitEthernet 0/1",
		"CPU",
		"x",
		"",
		"Serial0/0/0:1",
	}
	for _, name := range names {
		once := Normalize(name)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", name, twice, once)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal("GigabitEthernet9/22", "Gi9/22") {
		t.Error("GigabitEthernet9/22 and Gi9/22 should be equal")
	}
	if Equal("GigabitEthernet0/3", "GigabitEthernet0/3.2335") {
		t.Error("parent and subinterface must not be equal")
	}
	if Equal("Gi0/1", "Fa0/1") {
		t.Error("different types must not be equal")
	}
}
