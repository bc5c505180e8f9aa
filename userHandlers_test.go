package main

import (
	"encoding/json"
	"testing"
)

// Open registration must not honor a caller-supplied role; escalation goes
// through the admin-gated role endpoint.
func TestRegisterRequestDropsCallerSuppliedRole(t *testing.T) {
	body := []byte(`{"tenant_id":"t-1","email":"a@example.com","name":"A","password":"pw","role":"ADMIN"}`)
	var req registerRequest
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if input := req.toNewUser(); input.Role != "" {
		t.Fatalf("open registration must not grant a role, got %q", input.Role)
	}
}
