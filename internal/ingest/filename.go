package ingest

import (
	"fmt"
	"regexp"
	"strconv"
)

// Emotion is the label attached to every row of a recording.
type Emotion string

const (
	Fear    Emotion = "Fear"
	Happy   Emotion = "Happy"
	Sad     Emotion = "Sad"
	Unknown Emotion = "Unknown"
)

// filenameRE finds sub<digits>t<digits><code> anywhere in a file name.
var filenameRE = regexp.MustCompile(`sub(\d+)t\d+([HSF])`)

// EmotionFromCode maps a filename letter to its label. Codes outside H, S
// and F give Unknown; ParseFilename never produces them.
func EmotionFromCode(code byte) Emotion {
	switch code {
	case 'H':
		return Happy
	case 'S':
		return Sad
	case 'F':
		return Fear
	}
	return Unknown
}

// ParseFilename extracts the subject id and emotion from a recording name
// such as "sub07t2H.mat".
func ParseFilename(name string) (subjectID int, emotion Emotion, err error) {
	m := filenameRE.FindStringSubmatch(name)
	if m == nil {
		return 0, "", fmt.Errorf("could not parse subject and emotion from %q", name)
	}
	subjectID, err = strconv.Atoi(m[1])
	if err != nil {
		return 0, "", fmt.Errorf("subject id in %q: %w", name, err)
	}
	return subjectID, EmotionFromCode(m[2][0]), nil
}
