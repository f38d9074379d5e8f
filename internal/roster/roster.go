// Package roster imports council roster exports. The export is a CSV with a
// header row and the columns scout_name, scout_email, parent_name,
// parent_email, den. Each data row creates or reuses the scout and parent
// users, links them into one household, places the scout in the named den and
// grants both of them troop memberships with default roles.
package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/troopvault/tv-backend/internal/logging"
	"github.com/troopvault/tv-backend/internal/privileges"
	"github.com/troopvault/tv-backend/internal/store"
)

var ErrEmptyRoster = errors.New("roster file has no data rows")

var expectedHeader = []string{"scout_name", "scout_email", "parent_name", "parent_email", "den"}

// Store is the slice of the database layer the importer needs.
type Store interface {
	GetOrCreateUserByEmail(ctx context.Context, email, fullName string) (store.User, error)
	GetOrCreateHousehold(ctx context.Context, name string) (store.Household, error)
	AddHouseholdMember(ctx context.Context, householdID, userID uuid.UUID) error
	GetOrCreateDen(ctx context.Context, troopID uuid.UUID, name string) (store.Den, error)
	UpsertMembership(ctx context.Context, troopID, userID uuid.UUID, role string, denID *uuid.UUID) (store.Membership, error)
}

// Summary reports what an import run did. Failed rows are skipped, not
// aborted on, so one malformed line does not sink a 200-row roster.
type Summary struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

type Importer struct {
	store Store
}

func NewImporter(s Store) *Importer {
	return &Importer{store: s}
}

func (i *Importer) Import(ctx context.Context, troopID uuid.UUID, r io.Reader) (*Summary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyRoster
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read roster header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	summary := &Summary{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		if err := i.importRow(ctx, troopID, record); err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		summary.Imported++
	}

	if summary.Imported == 0 && summary.Skipped == 0 {
		return nil, ErrEmptyRoster
	}

	logging.Info("roster import finished",
		"troop_id", troopID,
		"imported", summary.Imported,
		"skipped", summary.Skipped,
	)

	return summary, nil
}

func (i *Importer) importRow(ctx context.Context, troopID uuid.UUID, record []string) error {
	row, err := parseRow(record)
	if err != nil {
		return err
	}

	scout, err := i.store.GetOrCreateUserByEmail(ctx, row.scoutEmail, row.scoutName)
	if err != nil {
		return fmt.Errorf("scout %s: %w", row.scoutEmail, err)
	}
	parent, err := i.store.GetOrCreateUserByEmail(ctx, row.parentEmail, row.parentName)
	if err != nil {
		return fmt.Errorf("parent %s: %w", row.parentEmail, err)
	}

	household, err := i.store.GetOrCreateHousehold(ctx, householdName(row.parentName))
	if err != nil {
		return err
	}
	if err := i.store.AddHouseholdMember(ctx, household.ID, scout.ID); err != nil {
		return err
	}
	if err := i.store.AddHouseholdMember(ctx, household.ID, parent.ID); err != nil {
		return err
	}

	den, err := i.store.GetOrCreateDen(ctx, troopID, row.den)
	if err != nil {
		return fmt.Errorf("den %q: %w", row.den, err)
	}

	if _, err := i.store.UpsertMembership(ctx, troopID, scout.ID, string(privileges.RoleMember), &den.ID); err != nil {
		return err
	}
	if _, err := i.store.UpsertMembership(ctx, troopID, parent.ID, string(privileges.RoleParent), nil); err != nil {
		return err
	}

	return nil
}

type rosterRow struct {
	scoutName   string
	scoutEmail  string
	parentName  string
	parentEmail string
	den         string
}

func parseRow(record []string) (rosterRow, error) {
	if len(record) != len(expectedHeader) {
		return rosterRow{}, fmt.Errorf("expected %d columns, got %d", len(expectedHeader), len(record))
	}

	row := rosterRow{
		scoutName:   strings.TrimSpace(record[0]),
		scoutEmail:  strings.ToLower(strings.TrimSpace(record[1])),
		parentName:  strings.TrimSpace(record[2]),
		parentEmail: strings.ToLower(strings.TrimSpace(record[3])),
		den:         strings.TrimSpace(record[4]),
	}

	switch {
	case row.scoutName == "":
		return rosterRow{}, errors.New("scout_name is empty")
	case !isEmail(row.scoutEmail):
		return rosterRow{}, fmt.Errorf("invalid scout_email %q", row.scoutEmail)
	case row.parentName == "":
		return rosterRow{}, errors.New("parent_name is empty")
	case !isEmail(row.parentEmail):
		return rosterRow{}, fmt.Errorf("invalid parent_email %q", row.parentEmail)
	case row.den == "":
		return rosterRow{}, errors.New("den is empty")
	case row.scoutEmail == row.parentEmail:
		return rosterRow{}, errors.New("scout and parent share an email")
	}

	return row, nil
}

func checkHeader(header []string) error {
	if len(header) != len(expectedHeader) {
		return fmt.Errorf("expected %d header columns, got %d", len(expectedHeader), len(header))
	}
	for i, want := range expectedHeader {
		got := strings.ToLower(strings.TrimSpace(header[i]))
		if got != want {
			return fmt.Errorf("unexpected header column %d: got %q, want %q", i+1, header[i], want)
		}
	}
	return nil
}

func isEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && strings.Contains(s[at:], ".")
}

func householdName(parentName string) string {
	parts := strings.Fields(parentName)
	if len(parts) == 0 {
		return "Household"
	}
	return parts[len(parts)-1] + " Household"
}
