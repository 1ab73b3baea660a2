package models

import (
	"fmt"
	"time"
)

// PeriodLayout is the reference layout of a ledger period ("YYYY-MM").
const PeriodLayout = "2006-01"

// PeriodOf returns the UTC calendar month of t as a ledger period.
func PeriodOf(t time.Time) string {
	return t.UTC().Format(PeriodLayout)
}

// ValidPeriod reports whether p is a well formed "YYYY-MM" period.
func ValidPeriod(p string) bool {
	if len(p) != len(PeriodLayout) {
		return false
	}
	_, err := time.Parse(PeriodLayout, p)
	return err == nil
}

// GroupScore holds the tallies of one room for the current period.
type GroupScore struct {
	Points map[int64]int64  `json:"points"`
	Names  map[int64]string `json:"names"`
}

func NewGroupScore() *GroupScore {
	return &GroupScore{
		Points: make(map[int64]int64),
		Names:  make(map[int64]string),
	}
}

// Ledger is the persisted scoring document.
type Ledger struct {
	Period string                `json:"period"`
	Groups map[int64]*GroupScore `json:"groups"`
}

func NewLedger(period string) *Ledger {
	return &Ledger{
		Period: period,
		Groups: make(map[int64]*GroupScore),
	}
}

// Group returns the room's scores, creating them if absent.
func (l *Ledger) Group(roomID int64) *GroupScore {
	g, ok := l.Groups[roomID]
	if !ok || g == nil {
		g = NewGroupScore()
		l.Groups[roomID] = g
	}
	return g
}

// Entry returns the stored values for one player of a room.
func (l *Ledger) Entry(roomID, userID int64) ScoreEntry {
	entry := ScoreEntry{RoomID: roomID, UserID: userID}
	if g, ok := l.Groups[roomID]; ok && g != nil {
		entry.Points = g.Points[userID]
		entry.DisplayName = g.Names[userID]
	}
	return entry
}

// Validate checks the document shape and fills in missing maps.
func (l *Ledger) Validate() error {
	if !ValidPeriod(l.Period) {
		return fmt.Errorf("invalid ledger period %q", l.Period)
	}
	if l.Groups == nil {
		l.Groups = make(map[int64]*GroupScore)
	}
	for roomID, g := range l.Groups {
		if g == nil {
			l.Groups[roomID] = NewGroupScore()
			continue
		}
		if g.Points == nil {
			g.Points = make(map[int64]int64)
		}
		if g.Names == nil {
			g.Names = make(map[int64]string)
		}
		for userID, pts := range g.Points {
			if pts < 0 {
				return fmt.Errorf("negative points %d for user %d in room %d", pts, userID, roomID)
			}
		}
	}
	return nil
}

// Clone returns a deep copy.
func (l *Ledger) Clone() *Ledger {
	out := NewLedger(l.Period)
	for roomID, g := range l.Groups {
		if g == nil {
			continue
		}
		cg := NewGroupScore()
		for k, v := range g.Points {
			cg.Points[k] = v
		}
		for k, v := range g.Names {
			cg.Names[k] = v
		}
		out.Groups[roomID] = cg
	}
	return out
}

// ScoreEntry is one player's row within a room.
type ScoreEntry struct {
	RoomID      int64
	UserID      int64
	Points      int64
	DisplayName string
}

// LedgerPeriod stores the active period for relational backends.
type LedgerPeriod struct {
	ID        uint      `gorm:"primaryKey"`
	Period    string    `gorm:"type:varchar(7);not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (LedgerPeriod) TableName() string {
	return "ledger_periods"
}

// LedgerScore is a player's tally within a room for relational backends.
type LedgerScore struct {
	ID          uint      `gorm:"primaryKey"`
	RoomID      int64     `gorm:"not null;uniqueIndex:idx_ledger_room_user"`
	UserID      int64     `gorm:"not null;uniqueIndex:idx_ledger_room_user"`
	Points      int64     `gorm:"not null;default:0"`
	DisplayName string    `gorm:"type:varchar(255)"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (LedgerScore) TableName() string {
	return "ledger_scores"
}
