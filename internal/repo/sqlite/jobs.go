package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/geocoder89/jobtrail/internal/domain/job"
)

const jobColumns = `id, owner_id, company, role, status, application_date, link, notes, created_at, updated_at`

type JobsRepo struct {
	db  *sql.DB
	obs DBObserver
}

func NewJobsRepo(db *sql.DB, obs DBObserver) *JobsRepo {
	return &JobsRepo{db: db, obs: observerOrNoop(obs)}
}

func (r *JobsRepo) Create(ctx context.Context, j job.Job) error {
	return r.obs.ObserveDB("jobs.create", func() error {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO jobs (`+jobColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?)`,
			j.ID, j.OwnerID, j.Company, j.Role, string(j.Status), formatTS(j.ApplicationDate),
			j.Link, j.Notes, formatTS(j.CreatedAt), formatTS(j.UpdatedAt),
		)
		return err
	})
}

func (r *JobsRepo) GetByID(ctx context.Context, id string) (job.Job, error) {
	var j job.Job

	err := r.obs.ObserveDB("jobs.get_by_id", func() error {
		row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)

		var err error
		j, err = scanJob(row)
		if errors.Is(err, sql.ErrNoRows) {
			return job.ErrNotFound
		}
		return err
	})

	return j, err
}

func (r *JobsRepo) ListByOwner(ctx context.Context, ownerID string, f job.Filter) ([]job.Job, error) {
	conds := []string{"owner_id = ?"}
	args := []any{ownerID}

	if f.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*f.Status))
	}
	if f.StartDate != nil {
		conds = append(conds, "application_date >= ?")
		args = append(args, formatTS(*f.StartDate))
	}
	if f.EndDate != nil {
		conds = append(conds, "application_date <= ?")
		args = append(args, formatTS(*f.EndDate))
	}

	// SQLite only folds ASCII case, so the search term is matched here
	search := job.Filter{SearchTerm: f.SearchTerm}
	out := make([]job.Job, 0)

	err := r.obs.ObserveDB("jobs.list_by_owner", func() error {
		rows, err := r.db.QueryContext(ctx,
			`SELECT `+jobColumns+` FROM jobs WHERE `+strings.Join(conds, " AND ")+
				` ORDER BY application_date DESC, id ASC`,
			args...,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			j, err := scanJob(rows)
			if err != nil {
				return err
			}
			if search.Matches(j) {
				out = append(out, j)
			}
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *JobsRepo) Update(ctx context.Context, j job.Job) error {
	return r.obs.ObserveDB("jobs.update", func() error {
		res, err := r.db.ExecContext(ctx,
			`UPDATE jobs
			SET company = ?, role = ?, status = ?, application_date = ?, link = ?, notes = ?, updated_at = ?
			WHERE id = ?`,
			j.Company, j.Role, string(j.Status), formatTS(j.ApplicationDate), j.Link, j.Notes,
			formatTS(j.UpdatedAt), j.ID,
		)
		if err != nil {
			return err
		}

		return requireAffected(res)
	})
}

func (r *JobsRepo) Delete(ctx context.Context, id string) error {
	return r.obs.ObserveDB("jobs.delete", func() error {
		res, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
		if err != nil {
			return err
		}

		return requireAffected(res)
	})
}

func (r *JobsRepo) CountByStatus(ctx context.Context, ownerID string) (job.Stats, error) {
	var st job.Stats

	err := r.obs.ObserveDB("jobs.count_by_status", func() error {
		rows, err := r.db.QueryContext(ctx,
			`SELECT status, COUNT(*) FROM jobs WHERE owner_id = ? GROUP BY status`, ownerID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var status string
			var n int
			if err := rows.Scan(&status, &n); err != nil {
				return err
			}
			st.Add(job.Status(status), n)
		}

		return rows.Err()
	})
	if err != nil {
		return job.Stats{}, err
	}

	return st, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (job.Job, error) {
	var j job.Job
	var status, applied, created, updated string

	err := row.Scan(&j.ID, &j.OwnerID, &j.Company, &j.Role, &status, &applied, &j.Link, &j.Notes, &created, &updated)
	if err != nil {
		return job.Job{}, err
	}

	if j.Status, err = job.ParseStatus(status); err != nil {
		return job.Job{}, err
	}
	if j.ApplicationDate, err = parseTS(applied); err != nil {
		return job.Job{}, err
	}
	if j.CreatedAt, err = parseTS(created); err != nil {
		return job.Job{}, err
	}
	if j.UpdatedAt, err = parseTS(updated); err != nil {
		return job.Job{}, err
	}

	return j, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return job.ErrNotFound
	}
	return nil
}
