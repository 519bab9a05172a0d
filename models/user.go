package models

import "time"

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleStaff UserRole = "staff"
	RoleMC    UserRole = "mc"
	RoleJudge UserRole = "judge"
)

// Capability is a closed set of actions checked against a role table,
// instead of role-name comparisons scattered across handlers.
type Capability string

const (
	CapManageTournament Capability = "manage_tournament"
	CapAdvancePhase     Capability = "advance_phase"
	CapRegisterPerformer Capability = "register_performer"
	CapStartBattle      Capability = "start_battle"
	CapEncodeResult     Capability = "encode_result"
)

var roleCapabilities = map[UserRole]map[Capability]bool{
	RoleAdmin: {
		CapManageTournament:  true,
		CapAdvancePhase:      true,
		CapRegisterPerformer: true,
		CapStartBattle:       true,
		CapEncodeResult:      true,
	},
	RoleStaff: {
		CapAdvancePhase:      true,
		CapRegisterPerformer: true,
		CapStartBattle:       true,
		CapEncodeResult:      true,
	},
	RoleMC: {
		CapStartBattle: true,
	},
	RoleJudge: {
		CapEncodeResult: true,
	},
}

// HasCapability reports whether the role may perform the capability.
// Unknown roles have no capabilities.
func HasCapability(role UserRole, cap Capability) bool {
	return roleCapabilities[role][cap]
}

type User struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
