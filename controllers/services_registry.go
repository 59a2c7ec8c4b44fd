package controllers

import (
	"thesis-verification-api/services"
)

// Registry holds the services the handlers call. cmd/api builds it once at
// startup.
type Registry struct {
	Verifier          *services.VerificationService
	Approvals         *services.ApprovalService
	BlockingThreshold float64
}

var registry *Registry

// Configure installs the handler dependencies.
func Configure(r *Registry) {
	if r.BlockingThreshold <= 0 {
		r.BlockingThreshold = 70
	}
	registry = r
}
