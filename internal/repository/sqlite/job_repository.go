package sqlite

import (
	"database/sql"
	"fmt"

	"danceanalyzer/internal/models"
)

// JobRepository persists processing job records in SQLite.
type JobRepository struct {
	db *DB
}

// NewJobRepository creates a new SQLite job repository.
func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

// Insert adds a new job record to the database.
func (r *JobRepository) Insert(job *models.Job) error {
	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().Exec(`
		INSERT INTO jobs (id, source_name, status, frames, processed_frames, fps, width, height, output_name, output_size, error, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, job.ID, job.SourceName, job.Status, job.Frames, job.ProcessedFrames, job.FPS,
		job.Width, job.Height, job.OutputName, job.OutputSize, job.Error, job.CreatedAt, job.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	return nil
}

// Update overwrites the stored record of a job.
func (r *JobRepository) Update(job *models.Job) error {
	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().Exec(`
		UPDATE jobs
		SET status = ?, frames = ?, processed_frames = ?, fps = ?, width = ?, height = ?,
		    output_name = ?, output_size = ?, error = ?, completed_at = ?
		WHERE id = ?
	`, job.Status, job.Frames, job.ProcessedFrames, job.FPS, job.Width, job.Height,
		job.OutputName, job.OutputSize, job.Error, job.CompletedAt, job.ID)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	return nil
}

// GetByID retrieves a job by its ID.
func (r *JobRepository) GetByID(id string) (*models.Job, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var job models.Job
	err := r.db.Conn().QueryRow(`
		SELECT id, source_name, status, frames, processed_frames, fps, width, height, output_name, output_size, error, created_at, completed_at
		FROM jobs WHERE id = ?
	`, id).Scan(&job.ID, &job.SourceName, &job.Status, &job.Frames, &job.ProcessedFrames, &job.FPS,
		&job.Width, &job.Height, &job.OutputName, &job.OutputSize, &job.Error, &job.CreatedAt, &job.CompletedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// GetAll retrieves jobs based on filter criteria, newest first.
func (r *JobRepository) GetAll(filter *models.JobFilter) ([]models.Job, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	query := `
		SELECT id, source_name, status, frames, processed_frames, fps, width, height, output_name, output_size, error, created_at, completed_at
		FROM jobs
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var job models.Job
		if err := rows.Scan(&job.ID, &job.SourceName, &job.Status, &job.Frames, &job.ProcessedFrames, &job.FPS,
			&job.Width, &job.Height, &job.OutputName, &job.OutputSize, &job.Error, &job.CreatedAt, &job.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// DeleteByOutputName removes the job record belonging to a processed output file.
func (r *JobRepository) DeleteByOutputName(outputName string) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM jobs WHERE output_name = ?`, outputName); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

// Stats returns aggregate counts across all jobs.
func (r *JobRepository) Stats() (*models.JobStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	stats := &models.JobStats{PerStatus: make(map[string]int)}

	rows, err := r.db.Conn().Query(`SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to query job stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan job stats: %w", err)
		}
		stats.PerStatus[status] = count
		stats.TotalJobs += count
	}

	err = r.db.Conn().QueryRow(`
		SELECT COALESCE(SUM(frames), 0), COALESCE(SUM(output_size), 0) FROM jobs
	`).Scan(&stats.TotalFrames, &stats.TotalOutputBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to query job totals: %w", err)
	}

	return stats, nil
}
