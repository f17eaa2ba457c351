package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/jobtrail/internal/domain/job"
)

type JobsRepo struct {
	pool *pgxpool.Pool
	obs  DBObserver
}

func NewJobsRepo(pool *pgxpool.Pool, obs DBObserver) *JobsRepo {
	return &JobsRepo{pool: pool, obs: observerOrNoop(obs)}
}

const jobColumns = `id, owner_id, company, role, status, application_date, link, notes, created_at, updated_at`

func (r *JobsRepo) Create(ctx context.Context, j job.Job) error {
	return r.obs.ObserveDB("jobs.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO jobs (`+jobColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			j.ID, j.OwnerID, j.Company, j.Role, string(j.Status), j.ApplicationDate, j.Link, j.Notes, j.CreatedAt, j.UpdatedAt,
		)
		return err
	})
}

func (r *JobsRepo) GetByID(ctx context.Context, id string) (job.Job, error) {
	var j job.Job

	err := r.obs.ObserveDB("jobs.get_by_id", func() error {
		row := r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)

		err := scanJob(row, &j)
		if errors.Is(err, pgx.ErrNoRows) {
			return job.ErrNotFound
		}
		return err
	})

	return j, err
}

func (r *JobsRepo) ListByOwner(ctx context.Context, ownerID string, f job.Filter) ([]job.Job, error) {
	conds := []string{"owner_id = $1"}
	args := []interface{}{ownerID}

	argsPosition := 2

	// filtered conditional checks.
	if f.Status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", argsPosition))
		args = append(args, string(*f.Status))
		argsPosition++
	}

	if f.StartDate != nil {
		conds = append(conds, fmt.Sprintf("application_date >= $%d", argsPosition))
		args = append(args, *f.StartDate)
		argsPosition++
	}

	if f.EndDate != nil {
		conds = append(conds, fmt.Sprintf("application_date <= $%d", argsPosition))
		args = append(args, *f.EndDate)
		argsPosition++
	}

	if f.SearchTerm != nil {
		conds = append(conds, fmt.Sprintf(`(company ILIKE $%d ESCAPE '\' OR role ILIKE $%d ESCAPE '\')`, argsPosition, argsPosition))
		args = append(args, "%"+escapeLike(*f.SearchTerm)+"%")
	}

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY application_date DESC, id ASC`

	output := make([]job.Job, 0)

	err := r.obs.ObserveDB("jobs.list_by_owner", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var j job.Job
			if err := scanJob(rows, &j); err != nil {
				return err
			}
			output = append(output, j)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *JobsRepo) Update(ctx context.Context, j job.Job) error {
	return r.obs.ObserveDB("jobs.update", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE jobs
			SET company = $2,
				role = $3,
				status = $4,
				application_date = $5,
				link = $6,
				notes = $7,
				updated_at = $8
			WHERE id = $1`,
			j.ID, j.Company, j.Role, string(j.Status), j.ApplicationDate, j.Link, j.Notes, j.UpdatedAt,
		)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return job.ErrNotFound
		}
		return nil
	})
}

func (r *JobsRepo) Delete(ctx context.Context, id string) error {
	return r.obs.ObserveDB("jobs.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
		if err != nil {
			return err
		}

		// if no rows were deleted as a result return a not found error
		if tag.RowsAffected() == 0 {
			return job.ErrNotFound
		}
		return nil
	})
}

func (r *JobsRepo) CountByStatus(ctx context.Context, ownerID string) (job.Stats, error) {
	var st job.Stats

	err := r.obs.ObserveDB("jobs.count_by_status", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT status, COUNT(*) FROM jobs WHERE owner_id = $1 GROUP BY status`,
			ownerID,
		)
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

	return st, err
}

func scanJob(row pgx.Row, j *job.Job) error {
	var status string

	err := row.Scan(
		&j.ID,
		&j.OwnerID,
		&j.Company,
		&j.Role,
		&status,
		&j.ApplicationDate,
		&j.Link,
		&j.Notes,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	if err != nil {
		return err
	}

	j.Status, err = job.ParseStatus(status)
	if err != nil {
		return err
	}

	j.ApplicationDate = j.ApplicationDate.UTC()
	j.CreatedAt = j.CreatedAt.UTC()
	j.UpdatedAt = j.UpdatedAt.UTC()
	return nil
}

// escapeLike makes a search term literal inside a LIKE pattern.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
