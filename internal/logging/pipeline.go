package logging

import "time"

// Stage names the pipeline phase a log entry concerns, mirroring the stages
// a compile unit passes through on its way from source text to bytecode.
type Stage string

const (
	StageResolve Stage = "resolve"
	StageLex     Stage = "lex"
	StageParse   Stage = "parse"
	StageCodegen Stage = "codegen"
	StageChurn   Stage = "churn"
)

// WithStage scopes a ContextLogger to one pipeline stage for a compile unit.
func (cl *ContextLogger) WithStage(stage Stage) *ContextLogger {
	return cl.withStage(string(stage))
}

// WithFile scopes a ContextLogger to the source file currently being
// processed.
func (cl *ContextLogger) WithFile(path string) *ContextLogger {
	return cl.withFile(path)
}

// WithMacro scopes a ContextLogger to the macro currently being expanded.
func (cl *ContextLogger) WithMacro(macro string) *ContextLogger {
	return cl.withMacro(macro)
}

// UnitTimer measures how long one compile unit spends in a pipeline stage
// and logs the duration when Done is called.
type UnitTimer struct {
	logger *ContextLogger
	stage  Stage
	start  time.Time
}

// StartStage begins timing one pipeline stage for the given compile unit.
func StartStage(logger *ContextLogger, stage Stage) *UnitTimer {
	return &UnitTimer{logger: logger.WithStage(stage), stage: stage, start: time.Now()}
}

// Done logs the stage's outcome and elapsed time. err, if non-nil, is
// logged at ERROR level; otherwise the stage completes at DEBUG.
func (t *UnitTimer) Done(err error) {
	elapsed := time.Since(t.start).Milliseconds()
	if err != nil {
		t.logger.logger.log(ERROR, "stage failed", t.logger.mergeFields(map[string]interface{}{"error": err.Error()}), &elapsed)
		return
	}
	t.logger.logger.log(DEBUG, "stage completed", t.logger.ctx, &elapsed)
}
