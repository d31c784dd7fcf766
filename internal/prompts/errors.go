package prompts

import "errors"

// ErrInvalidStage is returned for stage names outside Stages().
var ErrInvalidStage = errors.New("stage must be parse, extract, assess, or summarise")
