package onboarding

import (
	"encoding/json"
	"fmt"
)

type Stage string

const (
	Stage1 Stage = "stage_1"
	Stage2 Stage = "stage_2"
	Stage3 Stage = "stage_3"
)

func ParseStage(raw string) (Stage, error) {
	switch s := Stage(raw); s {
	case Stage1, Stage2, Stage3:
		return s, nil
	}
	return "", fmt.Errorf("%w: stage %q", ErrUnrecognizedValue, raw)
}

func (s *Stage) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Cumulative required sets: each stage includes every field of the stages before it.
// The sets must stay nested. Validate asserts that, so an edit that breaks the
// nesting surfaces as ErrCorruptProgress instead of a skipped stage.
var (
	stage1Required = RecognizedFields[:3]
	stage2Required = RecognizedFields[:8]
	stage3Required = RecognizedFields
)

// RequiredFields returns the cumulative field set that completes a stage.
func RequiredFields(s Stage) []FieldName {
	var src []FieldName
	switch s {
	case Stage1:
		src = stage1Required
	case Stage2:
		src = stage2Required
	case Stage3:
		src = stage3Required
	}
	out := make([]FieldName, len(src))
	copy(out, src)
	return out
}

type Classification struct {
	Stage           Stage
	Stage1Completed bool
	Stage2Completed bool
	Stage3Completed bool
}

// Classify maps a field set to its onboarding stage. Custom fields are ignored.
func Classify(fields []Field) Classification {
	answered := answeredSet(fields)
	c := Classification{
		Stage1Completed: allAnswered(answered, stage1Required),
		Stage2Completed: allAnswered(answered, stage2Required),
		Stage3Completed: allAnswered(answered, stage3Required),
	}
	switch {
	case c.Stage2Completed:
		c.Stage = Stage3
	case c.Stage1Completed:
		c.Stage = Stage2
	default:
		c.Stage = Stage1
	}
	return c
}

// Validate asserts stage monotonicity: no stage may be complete while an
// earlier one is not.
func (c Classification) Validate() error {
	if c.Stage3Completed && !c.Stage2Completed {
		return fmt.Errorf("%w: stage_3 completed without stage_2", ErrCorruptProgress)
	}
	if c.Stage2Completed && !c.Stage1Completed {
		return fmt.Errorf("%w: stage_2 completed without stage_1", ErrCorruptProgress)
	}
	if _, err := ParseStage(string(c.Stage)); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptProgress, err)
	}
	return nil
}

func allAnswered(answered map[FieldName]string, required []FieldName) bool {
	for _, f := range required {
		if _, ok := answered[f]; !ok {
			return false
		}
	}
	return true
}
