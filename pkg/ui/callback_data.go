package ui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	PrefsPrefix        = "p:"
	DrillPrefix        = "d:"
	MaxCallbackDataLen = 64

	// CountStep is how much the +/- buttons change the question count.
	CountStep = 5
)

type Screen string

const (
	ScreenHome     Screen = "home"
	ScreenCount    Screen = "count"
	ScreenSpaced   Screen = "spaced"
	ScreenReversed Screen = "reversed"
	ScreenRounding Screen = "rounding"
	ScreenClose    Screen = "close"
)

type Operation string

const (
	OpNone   Operation = ""
	OpInc    Operation = "+"
	OpDec    Operation = "-"
	OpSet    Operation = "set"
	OpToggle Operation = "toggle"
)

// Action is a decoded preferences callback.
type Action struct {
	Screen Screen
	Op     Operation
	Value  int
}

type DrillOp string

const (
	DrillShow  DrillOp = "show"
	DrillGrade DrillOp = "grade"
	DrillStop  DrillOp = "stop"
)

// DrillAction is a decoded drill callback. Token names the session the
// button was rendered for so that stale keyboards can be rejected.
type DrillAction struct {
	Op    DrillOp
	Token string
	Grade int
}

var (
	errInvalidPrefix       = errors.New("invalid callback prefix")
	errInvalidAction       = errors.New("invalid callback action")
	errInvalidOperation    = errors.New("invalid callback operation")
	errInvalidValue        = errors.New("invalid callback value")
	errInvalidToken        = errors.New("invalid callback token")
	errCallbackDataTooLong = errors.New("callback data too long")
)

func BuildHomeCallback() (string, error) {
	return buildSimpleCallback(ScreenHome)
}

func BuildCountCallback() (string, error) {
	return buildSimpleCallback(ScreenCount)
}

func BuildCloseCallback() (string, error) {
	return buildSimpleCallback(ScreenClose)
}

func BuildCountIncCallback() (string, error) {
	return validateCallbackData(PrefsPrefix + string(ScreenCount) + ":" + string(OpInc))
}

func BuildCountDecCallback() (string, error) {
	return validateCallbackData(PrefsPrefix + string(ScreenCount) + ":" + string(OpDec))
}

func BuildCountSetCallback(value int) (string, error) {
	if value <= 0 {
		return "", errInvalidValue
	}
	return validateCallbackData(PrefsPrefix + string(ScreenCount) + ":" + string(OpSet) + ":" + strconv.Itoa(value))
}

// BuildToggleCallback flips one of the boolean-like preferences.
func BuildToggleCallback(screen Screen) (string, error) {
	if !isToggleScreen(screen) {
		return "", errInvalidAction
	}
	return validateCallbackData(PrefsPrefix + string(screen) + ":" + string(OpToggle))
}

func BuildShowCallback(token string) (string, error) {
	return buildDrillCallback(DrillShow, token)
}

func BuildStopCallback(token string) (string, error) {
	return buildDrillCallback(DrillStop, token)
}

func BuildGradeCallback(token string, grade int) (string, error) {
	if grade < 1 || grade > 5 {
		return "", errInvalidValue
	}
	data, err := buildDrillCallback(DrillGrade, token)
	if err != nil {
		return "", err
	}
	return validateCallbackData(data + ":" + strconv.Itoa(grade))
}

// IsDrillCallback reports whether data belongs to the drill keyboards.
func IsDrillCallback(data string) bool {
	return strings.HasPrefix(data, DrillPrefix)
}

func ParseCallbackData(data string) (Action, error) {
	if data == "" {
		return Action{}, errInvalidAction
	}
	if len(data) > MaxCallbackDataLen {
		return Action{}, errCallbackDataTooLong
	}
	if !strings.HasPrefix(data, PrefsPrefix) {
		return Action{}, errInvalidPrefix
	}

	parts := strings.Split(strings.TrimPrefix(data, PrefsPrefix), ":")
	screen, err := parseScreen(parts[0])
	if err != nil {
		return Action{}, err
	}

	switch len(parts) {
	case 1:
		return Action{Screen: screen, Op: OpNone}, nil
	case 2:
		op := Operation(parts[1])
		switch {
		case screen == ScreenCount && op == OpInc:
			return Action{Screen: screen, Op: OpInc, Value: CountStep}, nil
		case screen == ScreenCount && op == OpDec:
			return Action{Screen: screen, Op: OpDec, Value: -CountStep}, nil
		case isToggleScreen(screen) && op == OpToggle:
			return Action{Screen: screen, Op: OpToggle}, nil
		case op == OpInc || op == OpDec || op == OpToggle:
			return Action{}, errInvalidAction
		default:
			return Action{}, errInvalidOperation
		}
	case 3:
		if Operation(parts[1]) != OpSet {
			return Action{}, errInvalidOperation
		}
		if screen != ScreenCount {
			return Action{}, errInvalidAction
		}
		value, err := parsePositive(parts[2])
		if err != nil {
			return Action{}, err
		}
		return Action{Screen: screen, Op: OpSet, Value: value}, nil
	default:
		return Action{}, errInvalidAction
	}
}

func ParseDrillCallback(data string) (DrillAction, error) {
	if data == "" {
		return DrillAction{}, errInvalidAction
	}
	if len(data) > MaxCallbackDataLen {
		return DrillAction{}, errCallbackDataTooLong
	}
	if !strings.HasPrefix(data, DrillPrefix) {
		return DrillAction{}, errInvalidPrefix
	}

	parts := strings.Split(strings.TrimPrefix(data, DrillPrefix), ":")
	if len(parts) < 2 {
		return DrillAction{}, errInvalidAction
	}
	token := parts[1]
	if err := validateToken(token); err != nil {
		return DrillAction{}, err
	}

	switch op := DrillOp(parts[0]); op {
	case DrillShow, DrillStop:
		if len(parts) != 2 {
			return DrillAction{}, errInvalidAction
		}
		return DrillAction{Op: op, Token: token}, nil
	case DrillGrade:
		if len(parts) != 3 {
			return DrillAction{}, errInvalidAction
		}
		grade, err := parsePositive(parts[2])
		if err != nil || grade > 5 {
			return DrillAction{}, errInvalidValue
		}
		return DrillAction{Op: op, Token: token, Grade: grade}, nil
	default:
		return DrillAction{}, errInvalidOperation
	}
}

func buildSimpleCallback(screen Screen) (string, error) {
	return validateCallbackData(PrefsPrefix + string(screen))
}

func buildDrillCallback(op DrillOp, token string) (string, error) {
	if err := validateToken(token); err != nil {
		return "", err
	}
	return validateCallbackData(DrillPrefix + string(op) + ":" + token)
}

func validateToken(token string) error {
	if _, err := uuid.Parse(token); err != nil {
		return errInvalidToken
	}
	return nil
}

func validateCallbackData(data string) (string, error) {
	if data == "" {
		return "", errInvalidAction
	}
	if len(data) > MaxCallbackDataLen {
		return "", errCallbackDataTooLong
	}
	return data, nil
}

func isToggleScreen(screen Screen) bool {
	return screen == ScreenSpaced || screen == ScreenReversed || screen == ScreenRounding
}

func parseScreen(screenPart string) (Screen, error) {
	switch screen := Screen(screenPart); screen {
	case ScreenHome, ScreenCount, ScreenSpaced, ScreenReversed, ScreenRounding, ScreenClose:
		return screen, nil
	default:
		return "", errInvalidAction
	}
}

func parsePositive(value string) (int, error) {
	if !isASCIIUnsignedInt(value) {
		return 0, errInvalidValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, errInvalidValue
	}
	return n, nil
}

func isASCIIUnsignedInt(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}
