package permissions

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleProfessional Role = "professional"
	RoleReception    Role = "reception"
	RoleClient       Role = "client"
)

type Capability string

const (
	ManageShop              Capability = "manage_shop"
	ManageBusinessHours     Capability = "manage_business_hours"
	ManageTimeOff           Capability = "manage_time_off"
	ManageMembers           Capability = "manage_members"
	ManageServices          Capability = "manage_services"
	ManageProfessionals     Capability = "manage_professionals"
	ManageClients           Capability = "manage_clients"
	CreateAppointment       Capability = "create_appointment"
	UpdateAppointmentStatus Capability = "update_appointment_status"
	OverrideStatus          Capability = "override_appointment_status"
	ViewAgenda              Capability = "view_agenda"
	ViewAuditLogs           Capability = "view_audit_logs"
	BookSelf                Capability = "book_self"
	CancelOwnAppointment    Capability = "cancel_own_appointment"
)

var table = map[Role][]Capability{
	RoleAdmin: {
		ManageShop, ManageBusinessHours, ManageTimeOff, ManageMembers,
		ManageServices, ManageProfessionals, ManageClients,
		CreateAppointment, UpdateAppointmentStatus, OverrideStatus,
		ViewAgenda, ViewAuditLogs,
	},
	RoleReception: {
		ManageTimeOff, ManageClients,
		CreateAppointment, UpdateAppointmentStatus, ViewAgenda,
	},
	RoleProfessional: {
		ManageTimeOff, CreateAppointment, UpdateAppointmentStatus, ViewAgenda,
	},
	RoleClient: {
		BookSelf, CancelOwnAppointment,
	},
}

func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := table[r]
	return r, ok
}

// IsStaff is true for roles held through a shop membership.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleProfessional || r == RoleReception
}

// Can reports whether role holds capability. Unknown roles hold nothing.
func Can(role Role, capability Capability) bool {
	for _, c := range table[role] {
		if c == capability {
			return true
		}
	}
	return false
}
