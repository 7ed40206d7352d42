package db

import (
	"fmt"
	"strings"

	"github.com/BruksfildServices01/barber-agenda/internal/models"
)

const (
	NoOverlapConstraint = "appointments_no_overlap"
	intervalCheck       = "appointments_interval_check"
)

// occupyingPredicate is the WHERE clause of the overlap constraint: the
// statuses that hold a slot.
func occupyingPredicate(noShowBlocks bool) string {
	if noShowBlocks {
		return "status <> 'cancelled'"
	}
	return "status NOT IN ('cancelled', 'no_show')"
}

// NoOverlapDDL adds the exclusion constraint that keeps two occupying
// appointments of one professional from overlapping.
func NoOverlapDDL(noShowBlocks bool) string {
	return fmt.Sprintf(
		`ALTER TABLE appointments ADD CONSTRAINT %s EXCLUDE USING gist (professional_id WITH =, tstzrange(start_at, end_at, '[)') WITH &&) WHERE (%s)`,
		NoOverlapConstraint,
		occupyingPredicate(noShowBlocks),
	)
}

// ClientPhoneDDL adds the partial unique index behind find-or-create of
// clients by phone. Clients without a phone are not constrained.
func ClientPhoneDDL() string {
	return fmt.Sprintf(
		`CREATE UNIQUE INDEX IF NOT EXISTS %s ON clients (shop_id, phone) WHERE phone <> ''`,
		models.ClientPhoneIndex,
	)
}

// ConstraintStatements returns the DDL to bring the schema in line.
// existing is pg_get_constraintdef of the current overlap constraint, or
// empty when it is missing.
func ConstraintStatements(existing string, noShowBlocks bool) []string {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS btree_gist`,
		fmt.Sprintf(
			`DO $$ BEGIN
    IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
        ALTER TABLE appointments ADD CONSTRAINT %s CHECK (end_at > start_at);
    END IF;
END $$`, intervalCheck, intervalCheck),
		ClientPhoneDDL(),
	}

	if existing != "" && matchesPolicy(existing, noShowBlocks) {
		return stmts
	}

	if existing != "" {
		stmts = append(stmts, fmt.Sprintf(`ALTER TABLE appointments DROP CONSTRAINT %s`, NoOverlapConstraint))
	}
	return append(stmts, NoOverlapDDL(noShowBlocks))
}

// pg_get_constraintdef renders the no_show variant as
// "status <> ALL (ARRAY['cancelled'::text, 'no_show'::text])".
func matchesPolicy(def string, noShowBlocks bool) bool {
	mentionsNoShow := strings.Contains(def, "no_show")
	return mentionsNoShow != noShowBlocks
}
