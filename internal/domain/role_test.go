package domain

import "testing"

func TestParseRole(t *testing.T) {
	for _, s := range []string{"patient", "caregiver", "clinician", "agency_admin", "vendor"} {
		role, err := ParseRole(s)
		if err != nil {
			t.Fatalf("expected %q to parse, got %v", s, err)
		}
		if role.String() != s {
			t.Fatalf("round trip failed for %q", s)
		}
	}
}

func TestParseRole_UnknownValueIsAnError(t *testing.T) {
	// 不回退默认角色：未知取值必须显式失败
	for _, s := range []string{"", "admin", "PATIENT", "superuser"} {
		if _, err := ParseRole(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestHomePath(t *testing.T) {
	cases := map[Role]string{
		RolePatient:     "/dashboard",
		RoleCaregiver:   "/dashboard",
		RoleClinician:   "/dashboard/clinician",
		RoleAgencyAdmin: "/dashboard/admin",
		RoleVendor:      "/vendor/dashboard",
	}
	for role, want := range cases {
		if got := role.HomePath(); got != want {
			t.Fatalf("HomePath(%s) = %q, want %q", role, got, want)
		}
	}
}

func TestRevocationState(t *testing.T) {
	active := ActiveState()
	if active.Revoked() {
		t.Fatal("active state must not report revoked")
	}
}
