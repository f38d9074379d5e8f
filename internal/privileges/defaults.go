package privileges

import "fmt"

// ConfigurationError reports a default table that fails startup validation.
// It is fatal: the process must refuse to serve rather than run with an
// incomplete policy table.
type ConfigurationError struct {
	Role UnitRole
	Code string
	Msg  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("privilege defaults: role=%s code=%s: %s", e.Role, e.Code, e.Msg)
}

// RoleDefaults is the dense (role x privilege) -> scope table. It is built
// and validated once at startup and read-only afterwards, so concurrent
// reads need no synchronization.
type RoleDefaults struct {
	table map[UnitRole]map[string]Scope
}

// NewRoleDefaults builds the default table and validates it against the
// catalog: every fixed role must carry a scope for every catalog code, and
// no row may reference a code outside the catalog.
func NewRoleDefaults() (*RoleDefaults, error) {
	d := &RoleDefaults{table: defaultTable}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *RoleDefaults) validate() error {
	for _, role := range Roles() {
		row, ok := d.table[role]
		if !ok {
			return &ConfigurationError{Role: role, Msg: "missing role row"}
		}
		for _, def := range catalog {
			scope, ok := row[def.Code]
			if !ok {
				return &ConfigurationError{Role: role, Code: def.Code, Msg: "missing entry"}
			}
			if !scope.Valid() {
				return &ConfigurationError{Role: role, Code: def.Code, Msg: "invalid scope"}
			}
		}
		for code := range row {
			if !Known(code) {
				return &ConfigurationError{Role: role, Code: code, Msg: "unknown privilege code"}
			}
		}
	}
	return nil
}

// DefaultScope returns the scope a privilege carries for a role absent any
// override. Unknown roles fall back to the member row (fail closed). Unknown
// codes cannot reach this point from validated callers; they resolve to
// ScopeNone rather than panicking.
func (d *RoleDefaults) DefaultScope(role UnitRole, code string) Scope {
	row, ok := d.table[role]
	if !ok {
		row = d.table[RoleMember]
	}
	return row[code]
}

// defaultTable is written out cell by cell rather than derived from level
// heuristics so the density invariant stays mechanically checkable.
var defaultTable = map[UnitRole]map[string]Scope{
	RoleMember: {
		ViewScoutProfiles: ScopeSelf,
		EditScoutProfiles: ScopeSelf,
		ViewHealthForms:   ScopeNone,

		RecordSales:       ScopeSelf,
		ViewSales:         ScopeSelf,
		EditSales:         ScopeNone,
		ManageBooths:      ScopeNone,
		AssignBoothShifts: ScopeNone,

		ViewFinances:         ScopeNone,
		RecordPayments:       ScopeNone,
		GeneratePaymentLinks: ScopeSelf,
		ReconcileDeposits:    ScopeNone,

		ViewInventory:   ScopeSelf,
		ManageInventory: ScopeNone,
		TransferCases:   ScopeNone,

		ViewEvents:       ScopeTroop,
		ManageEvents:     ScopeNone,
		RecordAttendance: ScopeNone,

		SendAnnouncements: ScopeNone,
		MessageParents:    ScopeNone,
		ExportData:        ScopeNone,

		ManageMembers:       ScopeNone,
		ManageDens:          ScopeNone,
		ManageOverrides:     ScopeNone,
		ImportRoster:        ScopeNone,
		ViewAuditLog:        ScopeNone,
		ManageTroopSettings: ScopeNone,
	},
	RoleParent: {
		ViewScoutProfiles: ScopeHousehold,
		EditScoutProfiles: ScopeHousehold,
		ViewHealthForms:   ScopeHousehold,

		RecordSales:       ScopeHousehold,
		ViewSales:         ScopeHousehold,
		EditSales:         ScopeHousehold,
		ManageBooths:      ScopeNone,
		AssignBoothShifts: ScopeNone,

		ViewFinances:         ScopeHousehold,
		RecordPayments:       ScopeHousehold,
		GeneratePaymentLinks: ScopeHousehold,
		ReconcileDeposits:    ScopeNone,

		ViewInventory:   ScopeHousehold,
		ManageInventory: ScopeNone,
		TransferCases:   ScopeNone,

		ViewEvents:       ScopeTroop,
		ManageEvents:     ScopeNone,
		RecordAttendance: ScopeNone,

		SendAnnouncements: ScopeNone,
		MessageParents:    ScopeNone,
		ExportData:        ScopeNone,

		ManageMembers:       ScopeNone,
		ManageDens:          ScopeNone,
		ManageOverrides:     ScopeNone,
		ImportRoster:        ScopeNone,
		ViewAuditLog:        ScopeNone,
		ManageTroopSettings: ScopeNone,
	},
	RoleAssistant: {
		ViewScoutProfiles: ScopeDen,
		EditScoutProfiles: ScopeNone,
		ViewHealthForms:   ScopeDen,

		RecordSales:       ScopeDen,
		ViewSales:         ScopeDen,
		EditSales:         ScopeNone,
		ManageBooths:      ScopeNone,
		AssignBoothShifts: ScopeDen,

		ViewFinances:         ScopeNone,
		RecordPayments:       ScopeDen,
		GeneratePaymentLinks: ScopeDen,
		ReconcileDeposits:    ScopeNone,

		ViewInventory:   ScopeDen,
		ManageInventory: ScopeNone,
		TransferCases:   ScopeNone,

		ViewEvents:       ScopeTroop,
		ManageEvents:     ScopeNone,
		RecordAttendance: ScopeDen,

		SendAnnouncements: ScopeNone,
		MessageParents:    ScopeDen,
		ExportData:        ScopeNone,

		ManageMembers:       ScopeNone,
		ManageDens:          ScopeNone,
		ManageOverrides:     ScopeNone,
		ImportRoster:        ScopeNone,
		ViewAuditLog:        ScopeNone,
		ManageTroopSettings: ScopeNone,
	},
	RoleCookieLeader: {
		ViewScoutProfiles: ScopeTroop,
		EditScoutProfiles: ScopeNone,
		ViewHealthForms:   ScopeNone,

		RecordSales:       ScopeTroop,
		ViewSales:         ScopeTroop,
		EditSales:         ScopeTroop,
		ManageBooths:      ScopeTroop,
		AssignBoothShifts: ScopeTroop,

		ViewFinances:         ScopeTroop,
		RecordPayments:       ScopeTroop,
		GeneratePaymentLinks: ScopeTroop,
		ReconcileDeposits:    ScopeTroop,

		ViewInventory:   ScopeTroop,
		ManageInventory: ScopeTroop,
		TransferCases:   ScopeTroop,

		ViewEvents:       ScopeTroop,
		ManageEvents:     ScopeNone,
		RecordAttendance: ScopeNone,

		SendAnnouncements: ScopeTroop,
		MessageParents:    ScopeTroop,
		ExportData:        ScopeTroop,

		ManageMembers:       ScopeNone,
		ManageDens:          ScopeNone,
		ManageOverrides:     ScopeNone,
		ImportRoster:        ScopeNone,
		ViewAuditLog:        ScopeNone,
		ManageTroopSettings: ScopeNone,
	},
	RoleCoLeader: {
		ViewScoutProfiles: ScopeTroop,
		EditScoutProfiles: ScopeTroop,
		ViewHealthForms:   ScopeTroop,

		RecordSales:       ScopeTroop,
		ViewSales:         ScopeTroop,
		EditSales:         ScopeTroop,
		ManageBooths:      ScopeTroop,
		AssignBoothShifts: ScopeTroop,

		ViewFinances:         ScopeTroop,
		RecordPayments:       ScopeTroop,
		GeneratePaymentLinks: ScopeTroop,
		ReconcileDeposits:    ScopeNone,

		ViewInventory:   ScopeTroop,
		ManageInventory: ScopeTroop,
		TransferCases:   ScopeTroop,

		ViewEvents:       ScopeTroop,
		ManageEvents:     ScopeTroop,
		RecordAttendance: ScopeTroop,

		SendAnnouncements: ScopeTroop,
		MessageParents:    ScopeTroop,
		ExportData:        ScopeTroop,

		ManageMembers:       ScopeTroop,
		ManageDens:          ScopeTroop,
		ManageOverrides:     ScopeNone,
		ImportRoster:        ScopeTroop,
		ViewAuditLog:        ScopeNone,
		ManageTroopSettings: ScopeNone,
	},
	RoleTroopLeader: {
		ViewScoutProfiles: ScopeTroop,
		EditScoutProfiles: ScopeTroop,
		ViewHealthForms:   ScopeTroop,

		RecordSales:       ScopeTroop,
		ViewSales:         ScopeTroop,
		EditSales:         ScopeTroop,
		ManageBooths:      ScopeTroop,
		AssignBoothShifts: ScopeTroop,

		ViewFinances:         ScopeTroop,
		RecordPayments:       ScopeTroop,
		GeneratePaymentLinks: ScopeTroop,
		ReconcileDeposits:    ScopeTroop,

		ViewInventory:   ScopeTroop,
		ManageInventory: ScopeTroop,
		TransferCases:   ScopeTroop,

		ViewEvents:       ScopeTroop,
		ManageEvents:     ScopeTroop,
		RecordAttendance: ScopeTroop,

		SendAnnouncements: ScopeTroop,
		MessageParents:    ScopeTroop,
		ExportData:        ScopeTroop,

		ManageMembers:       ScopeTroop,
		ManageDens:          ScopeTroop,
		ManageOverrides:     ScopeTroop,
		ImportRoster:        ScopeTroop,
		ViewAuditLog:        ScopeTroop,
		ManageTroopSettings: ScopeTroop,
	},
	RoleAdmin: {
		ViewScoutProfiles: ScopeTroop,
		EditScoutProfiles: ScopeTroop,
		ViewHealthForms:   ScopeTroop,

		RecordSales:       ScopeTroop,
		ViewSales:         ScopeTroop,
		EditSales:         ScopeTroop,
		ManageBooths:      ScopeTroop,
		AssignBoothShifts: ScopeTroop,

		ViewFinances:         ScopeTroop,
		RecordPayments:       ScopeTroop,
		GeneratePaymentLinks: ScopeTroop,
		ReconcileDeposits:    ScopeTroop,

		ViewInventory:   ScopeTroop,
		ManageInventory: ScopeTroop,
		TransferCases:   ScopeTroop,

		ViewEvents:       ScopeTroop,
		ManageEvents:     ScopeTroop,
		RecordAttendance: ScopeTroop,

		SendAnnouncements: ScopeTroop,
		MessageParents:    ScopeTroop,
		ExportData:        ScopeTroop,

		ManageMembers:       ScopeTroop,
		ManageDens:          ScopeTroop,
		ManageOverrides:     ScopeTroop,
		ImportRoster:        ScopeTroop,
		ViewAuditLog:        ScopeTroop,
		ManageTroopSettings: ScopeTroop,
	},
}
