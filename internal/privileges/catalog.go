package privileges

// Privilege codes, grouped by category. These are the stable identifiers
// stored in override rows and referenced by handlers; renaming one is a
// breaking change for persisted overrides.
const (
	ViewScoutProfiles = "view_scout_profiles" // View scout profile data
	EditScoutProfiles = "edit_scout_profiles" // Edit scout profile data
	ViewHealthForms   = "view_health_forms"   // View medical/allergy forms

	RecordSales       = "record_sales"        // Record cookie sales for a scout
	ViewSales         = "view_sales"          // View recorded sales
	EditSales         = "edit_sales"          // Correct recorded sales
	ManageBooths      = "manage_booths"       // Create/edit booth sites
	AssignBoothShifts = "assign_booth_shifts" // Assign scouts to booth shifts

	ViewFinances         = "view_finances"          // View troop finance summaries
	RecordPayments       = "record_payments"        // Record customer payments
	GeneratePaymentLinks = "generate_payment_links" // Generate per-scout payment QR links
	ReconcileDeposits    = "reconcile_deposits"     // Reconcile bank deposits (future)

	ViewInventory   = "view_inventory"   // View case/box inventory
	ManageInventory = "manage_inventory" // Adjust inventory counts
	TransferCases   = "transfer_cases"   // Transfer cases between scouts/dens

	ViewEvents       = "view_events"       // View troop calendar
	ManageEvents     = "manage_events"     // Create/edit calendar events
	RecordAttendance = "record_attendance" // Record event attendance

	SendAnnouncements = "send_announcements" // Send troop-wide announcements
	MessageParents    = "message_parents"    // Direct-message parents
	ExportData        = "export_data"        // Export rosters/sales as CSV

	ManageMembers       = "manage_members"        // Add/remove troop members
	ManageDens          = "manage_dens"           // Create/edit dens, assign scouts
	ManageOverrides     = "manage_overrides"      // Set per-member privilege overrides
	ImportRoster        = "import_roster"         // Import roster CSV
	ViewAuditLog        = "view_audit_log"        // View the authorization audit trail
	ManageTroopSettings = "manage_troop_settings" // Edit troop-level settings (future)
)

// Privilege categories.
const (
	CategoryProfiles      = "profiles"
	CategorySales         = "sales"
	CategoryFinance       = "finance"
	CategoryInventory     = "inventory"
	CategoryEvents        = "events"
	CategoryCommunication = "communication"
	CategoryAdmin         = "admin"
)

// PrivilegeDefinition describes one controllable action. Entries are created
// once at init from the fixed list below and never mutated.
type PrivilegeDefinition struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Future   bool   `json:"future"`
}

// catalog is the authoritative ordered registry. Order is insertion order,
// grouped by category, and is the order Resolve emits entries in.
var catalog = []PrivilegeDefinition{
	{Code: ViewScoutProfiles, Name: "View scout profiles", Category: CategoryProfiles},
	{Code: EditScoutProfiles, Name: "Edit scout profiles", Category: CategoryProfiles},
	{Code: ViewHealthForms, Name: "View health forms", Category: CategoryProfiles},

	{Code: RecordSales, Name: "Record sales", Category: CategorySales},
	{Code: ViewSales, Name: "View sales", Category: CategorySales},
	{Code: EditSales, Name: "Edit sales", Category: CategorySales},
	{Code: ManageBooths, Name: "Manage booths", Category: CategorySales},
	{Code: AssignBoothShifts, Name: "Assign booth shifts", Category: CategorySales},

	{Code: ViewFinances, Name: "View finances", Category: CategoryFinance},
	{Code: RecordPayments, Name: "Record payments", Category: CategoryFinance},
	{Code: GeneratePaymentLinks, Name: "Generate payment links", Category: CategoryFinance},
	{Code: ReconcileDeposits, Name: "Reconcile deposits", Category: CategoryFinance, Future: true},

	{Code: ViewInventory, Name: "View inventory", Category: CategoryInventory},
	{Code: ManageInventory, Name: "Manage inventory", Category: CategoryInventory},
	{Code: TransferCases, Name: "Transfer cases", Category: CategoryInventory},

	{Code: ViewEvents, Name: "View events", Category: CategoryEvents},
	{Code: ManageEvents, Name: "Manage events", Category: CategoryEvents},
	{Code: RecordAttendance, Name: "Record attendance", Category: CategoryEvents},

	{Code: SendAnnouncements, Name: "Send announcements", Category: CategoryCommunication},
	{Code: MessageParents, Name: "Message parents", Category: CategoryCommunication},
	{Code: ExportData, Name: "Export data", Category: CategoryCommunication},

	{Code: ManageMembers, Name: "Manage members", Category: CategoryAdmin},
	{Code: ManageDens, Name: "Manage dens", Category: CategoryAdmin},
	{Code: ManageOverrides, Name: "Manage overrides", Category: CategoryAdmin},
	{Code: ImportRoster, Name: "Import roster", Category: CategoryAdmin},
	{Code: ViewAuditLog, Name: "View audit log", Category: CategoryAdmin},
	{Code: ManageTroopSettings, Name: "Manage troop settings", Category: CategoryAdmin, Future: true},
}

var catalogByCode = func() map[string]int {
	idx := make(map[string]int, len(catalog))
	for i, def := range catalog {
		if _, dup := idx[def.Code]; dup {
			panic("duplicate privilege code " + def.Code)
		}
		idx[def.Code] = i
	}
	return idx
}()

// Catalog returns the full ordered privilege registry. The returned slice is
// a copy; callers may not mutate the registry.
func Catalog() []PrivilegeDefinition {
	out := make([]PrivilegeDefinition, len(catalog))
	copy(out, catalog)
	return out
}

// Known reports whether code names a catalog entry.
func Known(code string) bool {
	_, ok := catalogByCode[code]
	return ok
}
