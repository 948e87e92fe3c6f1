// Package store records sensor calibrations, so drift of the
// thresholds can be reviewed across runs.
package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/golang/glog"

	"github.com/robotalks/linebot/pkg/sensor"
)

// CalibrationRecord is a single stored calibration.
type CalibrationRecord struct {
	ID        int       `storm:"increment" json:"id"`
	Side      string    `storm:"index" json:"side"`
	Channel   int       `json:"channel"`
	Time      time.Time `json:"time"`
	Threshold int       `json:"threshold"`
	Min       int       `json:"min"`
	Max       int       `json:"max"`
	Samples   int       `json:"samples"`
}

// String implements fmt.Stringer.
func (r CalibrationRecord) String() string {
	return fmt.Sprintf("#%d %s %s ch=%d threshold=%d min=%d max=%d samples=%d",
		r.ID, r.Time.Format(time.RFC3339), r.Side, r.Channel, r.Threshold, r.Min, r.Max, r.Samples)
}

// Store is the calibration database.
type Store struct {
	db  *storm.DB
	now func() time.Time
}

// Open opens or creates the database file.
func Open(path string) (*Store, error) {
	db, err := storm.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v", path, err)
	}
	if err := db.Init(&CalibrationRecord{}); err != nil {
		db.Close()
		return nil, err
	}
	glog.V(1).Infof("calibrations recorded in %s", path)
	return &Store{db: db, now: time.Now}, nil
}

// RecordCalibration implements linefollow.CalibrationRecorder.
func (s *Store) RecordCalibration(side string, channel int, cal sensor.Calibration) error {
	rec := &CalibrationRecord{
		Side:      side,
		Channel:   channel,
		Time:      s.now(),
		Threshold: int(cal.Threshold),
		Min:       cal.Min,
		Max:       cal.Max,
		Samples:   cal.Samples,
	}
	if err := s.db.Save(rec); err != nil {
		return fmt.Errorf("record calibration: %v", err)
	}
	return nil
}

// Calibrations lists the recorded calibrations of side, oldest first.
// Empty side lists both sides.
func (s *Store) Calibrations(side string) ([]CalibrationRecord, error) {
	var recs []CalibrationRecord
	var err error
	if side == "" {
		err = s.db.All(&recs)
	} else {
		err = s.db.Find("Side", side, &recs)
	}
	if err == storm.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	return recs, nil
}

// Last returns the most recent calibration of side.
func (s *Store) Last(side string) (*CalibrationRecord, error) {
	recs, err := s.Calibrations(side)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, storm.ErrNotFound
	}
	return &recs[len(recs)-1], nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
