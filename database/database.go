package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chart-analyze-service/config"
	"chart-analyze-service/models"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"
)

// ErrRecordNotFound is returned when a record id does not exist (or has
// aged out of the retention window for read paths that apply it).
var ErrRecordNotFound = errors.New("analysis record not found")

const maxConnectAttempts = 6

// Database represents the database connection
type Database struct {
	db *sql.DB
}

// NewDatabase creates a new database connection
func NewDatabase(cfg *config.Config) (*Database, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection with exponential backoff retry
	waitInterval := 1 * time.Second
	for attempt := 1; ; attempt++ {
		if err = db.Ping(); err == nil {
			break
		}
		if attempt >= maxConnectAttempts {
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempt, err)
		}
		log.Warnf("Database connection failed, retrying in %v: %v", waitInterval, err)
		time.Sleep(waitInterval)
		waitInterval *= 2
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Database{db: db}, nil
}

// NewDatabaseFromConn wraps an existing connection. Used by tests and tools
// that manage the connection themselves.
func NewDatabaseFromConn(db *sql.DB) *Database {
	return &Database{db: db}
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// CreateAnalysisRecordsTable creates the analysis_records table if it doesn't exist
func (d *Database) CreateAnalysisRecordsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS analysis_records (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		image LONGBLOB,
		analysis_text TEXT,
		is_chart BOOLEAN NOT NULL DEFAULT TRUE,
		graph_type VARCHAR(64) DEFAULT '',
		x_axis VARCHAR(64) DEFAULT '',
		y_axis VARCHAR(64) DEFAULT '',
		trend VARCHAR(255) DEFAULT '',
		volume VARCHAR(255) DEFAULT '',
		insights TEXT,
		recommendations TEXT,
		humorous_comment TEXT,
		game_plan TEXT,
		emoji VARCHAR(16) DEFAULT '',
		sentiment VARCHAR(255) DEFAULT '',
		market_mood VARCHAR(255) DEFAULT '',
		risk_level VARCHAR(255) DEFAULT '',
		source VARCHAR(32) DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_analysis_records_created_at (created_at),
		INDEX idx_analysis_records_is_chart (is_chart)
	)`

	_, err := d.db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create analysis_records table: %w", err)
	}

	log.Info("analysis_records table created/verified successfully")
	return nil
}

// SaveRecord persists an accepted analysis with its source image bytes.
func (d *Database) SaveRecord(record *models.AnalysisRecord) error {
	insights, err := json.Marshal(record.Analysis.Data.Insights)
	if err != nil {
		return fmt.Errorf("failed to encode insights: %w", err)
	}
	recommendations, err := json.Marshal(record.Analysis.Data.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to encode recommendations: %w", err)
	}

	query := `
	INSERT INTO analysis_records (
		id, image, analysis_text, is_chart,
		graph_type, x_axis, y_axis, trend, volume,
		insights, recommendations,
		humorous_comment, game_plan, emoji,
		sentiment, market_mood, risk_level, source, created_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = d.db.Exec(query,
		record.ID,
		record.ImageData,
		record.Analysis.AnalysisText,
		record.Analysis.IsChart,
		record.Analysis.Data.Type,
		record.Analysis.Data.XAxis,
		record.Analysis.Data.YAxis,
		record.Analysis.Data.Trend,
		record.Analysis.Data.Volume,
		insights,
		recommendations,
		record.Analysis.HumorousComment,
		record.Analysis.GamePlan,
		record.Analysis.Emoji,
		record.Analysis.Sentiment,
		record.Analysis.MarketMood,
		record.Analysis.RiskLevel,
		record.Source,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis record: %w", err)
	}

	return nil
}

const recordColumns = `id, image, analysis_text, is_chart,
		graph_type, x_axis, y_axis, trend, volume,
		insights, recommendations,
		humorous_comment, game_plan, emoji,
		sentiment, market_mood, risk_level, source, created_at`

// GetRecord fetches one record by id.
func (d *Database) GetRecord(id string) (*models.AnalysisRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM analysis_records WHERE id = ?`

	record, err := scanRecord(d.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to fetch analysis record %s: %w", id, err)
	}
	return record, nil
}

// ListRecords returns records newer than the retention window, newest first.
// Retention is a read-time filter; aged-out rows stay in place until an
// explicit delete.
func (d *Database) ListRecords(retentionDays int) ([]models.AnalysisRecord, error) {
	query := `SELECT ` + recordColumns + `
	FROM analysis_records
	WHERE created_at >= DATE_SUB(NOW(), INTERVAL ? DAY)
	ORDER BY created_at DESC`

	rows, err := d.db.Query(query, retentionDays)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis records: %w", err)
	}
	defer rows.Close()

	var records []models.AnalysisRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis record: %w", err)
		}
		records = append(records, *record)
	}

	return records, rows.Err()
}

// DeleteRecord removes a record by explicit user action.
func (d *Database) DeleteRecord(id string) error {
	result, err := d.db.Exec(`DELETE FROM analysis_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis record %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get status of delete: %w", err)
	}
	if rows == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Stats holds history counts within the retention window.
type Stats struct {
	Total     int `json:"total"`
	Charts    int `json:"charts"`
	NonCharts int `json:"non_charts"`
}

// GetStats returns counts over the retention window.
func (d *Database) GetStats(retentionDays int) (*Stats, error) {
	query := `
	SELECT COUNT(*), COALESCE(SUM(is_chart), 0)
	FROM analysis_records
	WHERE created_at >= DATE_SUB(NOW(), INTERVAL ? DAY)`

	var stats Stats
	err := d.db.QueryRow(query, retentionDays).Scan(&stats.Total, &stats.Charts)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis stats: %w", err)
	}
	stats.NonCharts = stats.Total - stats.Charts
	return &stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.AnalysisRecord, error) {
	var record models.AnalysisRecord
	var insights, recommendations []byte
	var humor, gamePlan, emoji, sentiment, marketMood, riskLevel, source sql.NullString

	err := row.Scan(
		&record.ID,
		&record.ImageData,
		&record.Analysis.AnalysisText,
		&record.Analysis.IsChart,
		&record.Analysis.Data.Type,
		&record.Analysis.Data.XAxis,
		&record.Analysis.Data.YAxis,
		&record.Analysis.Data.Trend,
		&record.Analysis.Data.Volume,
		&insights,
		&recommendations,
		&humor,
		&gamePlan,
		&emoji,
		&sentiment,
		&marketMood,
		&riskLevel,
		&source,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(insights) > 0 {
		if err := json.Unmarshal(insights, &record.Analysis.Data.Insights); err != nil {
			return nil, fmt.Errorf("failed to decode insights: %w", err)
		}
	}
	if len(recommendations) > 0 {
		if err := json.Unmarshal(recommendations, &record.Analysis.Data.Recommendations); err != nil {
			return nil, fmt.Errorf("failed to decode recommendations: %w", err)
		}
	}

	record.Analysis.HumorousComment = humor.String
	record.Analysis.GamePlan = gamePlan.String
	record.Analysis.Emoji = emoji.String
	record.Analysis.Sentiment = sentiment.String
	record.Analysis.MarketMood = marketMood.String
	record.Analysis.RiskLevel = riskLevel.String
	record.Source = source.String

	// The analysis carries the image only on the chart path.
	if record.Analysis.IsChart {
		record.Analysis.ImageData = record.ImageData
	}

	return &record, nil
}
