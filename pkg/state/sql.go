package state

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Entity struct {
	ID uint `gorm:"primaryKey"`
}

type Match struct {
	Entity

	// Every match is assigned a unique identifier
	UUID    string `gorm:"unique;size:36"`
	Server  string `gorm:"size:64"`
	Map     string `gorm:"size:64"`
	Started time.Time

	// Zero while the match is in progress or if it was abandoned
	Ended time.Time

	Rounds    int
	BlueScore int
	RedScore  int
	// blue, red or none for a draw
	Winner string `gorm:"size:8"`

	RoundResults []Round `gorm:"foreignKey:MatchID"`
}

type Round struct {
	Entity

	MatchID uint   `gorm:"not null;index"`
	Number  int    `gorm:"not null"`
	Winner  string `gorm:"size:8"`
	// Empty when the bomb was never planted
	Bomb  string `gorm:"size:16"`
	Ended time.Time
}

// Rating tracks the skill of a player across matches. Players have no
// accounts, so ratings are keyed by name.
type Rating struct {
	Entity

	Name   string `gorm:"unique;size:32" json:"name"`
	Value  int    `json:"value"`
	Wins   uint   `json:"wins"`
	Draws  uint   `json:"draws"`
	Losses uint   `json:"losses"`
}

func InitDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(&Match{}, &Round{}, &Rating{})
	if err != nil {
		return nil, err
	}

	return db, nil
}
