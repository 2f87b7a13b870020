package ledger

import (
	"context"
	"fmt"
)

// ReportRow is one recorded iteration report.
type ReportRow struct {
	RunID      int64
	Phase      string
	Iteration  int
	Status     string
	CoverageBP int
	Violations int
	Warnings   int
	Manual     int
	Excellence bool
	Body       string
}

// ListReports returns a run's reports in iteration order.
func (s *Store) ListReports(ctx context.Context, runID int64) ([]ReportRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, phase, iteration, status, coverage_bp,
		       violations, warnings, manual, excellence, body
		FROM reports
		WHERE run_id = ?
		ORDER BY iteration ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []ReportRow
	for rows.Next() {
		var r ReportRow
		var excellence int
		if err := rows.Scan(&r.RunID, &r.Phase, &r.Iteration, &r.Status, &r.CoverageBP,
			&r.Violations, &r.Warnings, &r.Manual, &excellence, &r.Body); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		r.Excellence = excellence != 0
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return out, nil
}

// RepairRow is one recorded repair attempt.
type RepairRow struct {
	RunID       int64
	Iteration   int
	Kind        string
	Endpoint    string
	Outcome     string
	Fingerprint string
	Detail      string
}

// ListRepairs returns a run's repair attempts in insertion order.
func (s *Store) ListRepairs(ctx context.Context, runID int64) ([]RepairRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, iteration, kind, endpoint, outcome, fingerprint, detail
		FROM repairs
		WHERE run_id = ?
		ORDER BY id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list repairs: %w", err)
	}
	defer rows.Close()

	var out []RepairRow
	for rows.Next() {
		var r RepairRow
		if err := rows.Scan(&r.RunID, &r.Iteration, &r.Kind, &r.Endpoint,
			&r.Outcome, &r.Fingerprint, &r.Detail); err != nil {
			return nil, fmt.Errorf("scan repair: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list repairs: %w", err)
	}
	return out, nil
}

// OutcomeCounts aggregates a run's repair outcomes.
func (s *Store) OutcomeCounts(ctx context.Context, runID int64) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT outcome, COUNT(*)
		FROM repairs
		WHERE run_id = ?
		GROUP BY outcome
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("outcome counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		counts[outcome] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("outcome counts: %w", err)
	}
	return counts, nil
}
