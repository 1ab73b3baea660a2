package quiz

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed messages.yaml
var defaultMessages []byte

// Messages is the catalog of user-facing texts.
type Messages struct {
	RoomCreated      string `yaml:"room_created"`
	GroupOnly        string `yaml:"group_only"`
	NoRoom           string `yaml:"no_room"`
	Joined           string `yaml:"joined"`
	NotHost          string `yaml:"not_host"`
	AlreadyStarted   string `yaml:"already_started"`
	QuizOver         string `yaml:"quiz_over"`
	GameStarted      string `yaml:"game_started"`
	Question         string `yaml:"question"`
	Winner           string `yaml:"winner"`
	Finished         string `yaml:"finished"`
	NotJoined        string `yaml:"not_joined"`
	WrongAnswer      string `yaml:"wrong_answer"`
	LeaderboardTitle string `yaml:"leaderboard_title"`
	LeaderboardLine  string `yaml:"leaderboard_line"`
	LeaderboardEmpty string `yaml:"leaderboard_empty"`
	RateLimited      string `yaml:"rate_limited"`
	Help             string `yaml:"help"`
}

// DefaultMessages returns the built-in catalog.
func DefaultMessages() *Messages {
	m := &Messages{}
	if err := yaml.Unmarshal(defaultMessages, m); err != nil {
		panic(fmt.Sprintf("quiz: embedded messages are invalid: %v", err))
	}
	return m
}

// LoadMessages overlays the YAML file at path onto the built-in catalog.
// Keys missing from the file keep their default text.
func LoadMessages(path string) (*Messages, error) {
	m := DefaultMessages()
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse messages: %w", err)
	}
	return m, nil
}
