package domain

import (
	"fmt"
	"time"
)

// Engine identifies the database engine a connection points at.
type Engine string

const (
	EnginePostgreSQL Engine = "postgresql"
	EngineMongo      Engine = "mongo"
)

func (e Engine) Valid() bool {
	switch e {
	case EnginePostgreSQL, EngineMongo:
		return true
	}
	return false
}

// Interval is how often a database should be backed up.
type Interval string

const (
	IntervalHourly  Interval = "HOURLY"
	IntervalDaily   Interval = "DAILY"
	IntervalWeekly  Interval = "WEEKLY"
	IntervalMonthly Interval = "MONTHLY"
)

// Duration returns the minimum time between backups for the interval.
// MONTHLY is a fixed 30 days, not calendar-month aware.
func (i Interval) Duration() (time.Duration, error) {
	switch i {
	case IntervalHourly:
		return time.Hour, nil
	case IntervalDaily:
		return 24 * time.Hour, nil
	case IntervalWeekly:
		return 7 * 24 * time.Hour, nil
	case IntervalMonthly:
		return 30 * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownInterval, string(i))
}

func (i Interval) Valid() bool {
	_, err := i.Duration()
	return err == nil
}

// DatabaseConnection is one externally managed database the service
// protects. The backup core only ever mutates LastBackupAt; everything
// else belongs to the CRUD layer.
type DatabaseConnection struct {
	ID           string
	Name         string
	Engine       Engine
	Host         string
	Port         int
	Username     string
	Password     string
	DatabaseName string
	Interval     Interval
	LastBackupAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsDue reports whether a database with the given last backup time and
// interval needs a backup at now. A database that has never been backed
// up is always due; the boundary elapsed == interval counts as due.
func IsDue(lastBackupAt *time.Time, interval Interval, now time.Time) (bool, error) {
	d, err := interval.Duration()
	if err != nil {
		return false, err
	}
	if lastBackupAt == nil {
		return true, nil
	}
	return now.Sub(*lastBackupAt) >= d, nil
}

// RestoreTarget identifies the database a backup is restored into.
type RestoreTarget struct {
	Host         string
	Port         int
	Username     string
	Password     string
	DatabaseName string
}
