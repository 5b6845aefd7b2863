package model

import (
	"encoding/json"
	"testing"
)

func TestMemberRole_IsValid(t *testing.T) {
	t.Parallel()

	for _, r := range []MemberRole{MemberRoleWarmonger, MemberRoleFarmer, MemberRoleHybrid} {
		if !r.IsValid() {
			t.Errorf("expected %q to be valid", r)
		}
	}
	for _, r := range []MemberRole{"", "admin", "Farmer"} {
		if r.IsValid() {
			t.Errorf("expected %q to be invalid", r)
		}
	}
}

func TestUpdateRolesRequest_Validate(t *testing.T) {
	t.Parallel()

	var req UpdateRolesRequest
	body := `{"roles":[{"address":"0x1","role":"farmer"},{"id":"x","role":null},{"identifier":"0x2","role":"general"}]}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if req.Roles[1].Role != nil {
		t.Error("null role should decode to nil")
	}

	errs := req.Validate()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if errs[0].Field != "roles[2].role" {
		t.Errorf("unexpected field %q", errs[0].Field)
	}
}

func TestMemberSelector_IsEmpty(t *testing.T) {
	t.Parallel()

	if !(MemberSelector{}).IsEmpty() {
		t.Error("zero selector should be empty")
	}
	if (MemberSelector{Identifier: "0x1"}).IsEmpty() {
		t.Error("selector with identifier should not be empty")
	}
	if !(MemberRef{}).IsEmpty() {
		t.Error("zero ref should be empty")
	}
}

func TestMemberWithRealmCount_FlattensJSON(t *testing.T) {
	t.Parallel()

	role := MemberRoleHybrid
	m := MemberWithRealmCount{
		Member:     Member{ID: "member:abc", Address: "0x1", Role: &role},
		RealmCount: 3,
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["_id"] != "member:abc" || out["realmCount"] != float64(3) || out["role"] != "hybrid" {
		t.Errorf("unexpected JSON: %s", data)
	}
	if out["isElite"] != false {
		t.Errorf("isElite should always be present, got %s", data)
	}
}

func TestIsMemberID(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want bool
	}{
		{"k3j9x2m1p0q8r7s6t5u4", true},
		{"member:k3j9x2m1p0q8r7s6t5u4", true},
		{"0x04b2c1", false},
		{"member:short", false},
		{"K3J9X2M1P0Q8R7S6T5U4", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsMemberID(tt.in); got != tt.want {
			t.Errorf("IsMemberID(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := MemberRecordID("k3j9x2m1p0q8r7s6t5u4"); got != "member:k3j9x2m1p0q8r7s6t5u4" {
		t.Errorf("MemberRecordID = %q", got)
	}
}
