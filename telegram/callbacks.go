package telegram

import (
	"fmt"
	"strconv"
	"strings"
)

// answerPrefix tags callback data produced by answer buttons.
const answerPrefix = "ans"

// EncodeAnswer builds the callback data for an answer button.
func EncodeAnswer(roomID int64, option int) string {
	return fmt.Sprintf("%s|%d|%d", answerPrefix, roomID, option)
}

// ParseAnswer decodes callback data built by EncodeAnswer.
func ParseAnswer(data string) (roomID int64, option int, ok bool) {
	parts := strings.Split(data, "|")
	if len(parts) != 3 || parts[0] != answerPrefix {
		return 0, 0, false
	}

	roomID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	option, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, false
	}
	return roomID, option, true
}
