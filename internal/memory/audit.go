package memory

// AuditOp enumerates the operations tracked in the memory audit trail.
type AuditOp string

const (
	AuditInsert     AuditOp = "insert"
	AuditPatch      AuditOp = "patch"
	AuditSupersede  AuditOp = "supersede"
	AuditInvalidate AuditOp = "invalidate"
	AuditForgetSoft AuditOp = "forget_soft"
	AuditForgetHard AuditOp = "forget_hard"
	AuditMigrate    AuditOp = "migrate"
)

// AuditEntry records one mutation against a Record, independent of the
// record's own history, so the store can answer "what happened and why"
// even after a record has been forgotten.
type AuditEntry struct {
	ID       string
	Op       AuditOp
	TargetID string
	Note     string
	At       int64 // unix seconds
}

func (s *Store) migrateAuditTable() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS memory_audit (
		id TEXT PRIMARY KEY,
		op TEXT NOT NULL,
		target_id TEXT NOT NULL,
		note TEXT,
		at INTEGER NOT NULL
	)`)
	return err
}

// RecordAudit appends an audit entry. The caller supplies id (typically a
// generated ulid/uuid) so replays stay idempotent.
func (s *Store) RecordAudit(e AuditEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO memory_audit (id, op, target_id, note, at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, string(e.Op), e.TargetID, e.Note, e.At,
	)
	return err
}

// AuditTrail returns all audit entries for a target record, oldest first.
func (s *Store) AuditTrail(targetID string) ([]AuditEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, op, target_id, note, at FROM memory_audit WHERE target_id = ? ORDER BY at ASC`,
		targetID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var op string
		if err := rows.Scan(&e.ID, &op, &e.TargetID, &e.Note, &e.At); err != nil {
			return nil, err
		}
		e.Op = AuditOp(op)
		entries = append(entries, e)
	}
	return entries, nil
}
