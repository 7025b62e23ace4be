package pipeline

import (
	"context"
	"errors"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// StageOutcome is the normalized result of one stage execution.
type StageOutcome struct {
	Stage    StageName
	Error    *StageError
	Result   StageResult
	Severity IssueSeverity
	Abort    bool
}

func resultFromStageErrorKind(k StageErrorKind) StageResult {
	switch k {
	case StageErrorWarning:
		return StageResultWarning
	case StageErrorCanceled:
		return StageResultCanceled
	default:
		return StageResultFatal
	}
}

// ClassifyStageResult converts the error returned by a stage into a
// StageOutcome. Errors that are not StageErrors are fatal unless they carry
// a context cancellation.
func ClassifyStageResult(stage StageName, err error) StageOutcome {
	if err == nil {
		return StageOutcome{Stage: stage, Result: StageResultSuccess}
	}
	var se *StageError
	if !errors.As(err, &se) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			se = NewCanceledStageError(stage, err)
		} else {
			se = NewFatalStageError(stage, err)
		}
	}
	sev := SeverityError
	if se.Kind == StageErrorWarning {
		sev = SeverityWarning
	}
	return StageOutcome{
		Stage:    stage,
		Error:    se,
		Result:   resultFromStageErrorKind(se.Kind),
		Severity: sev,
		Abort:    se.Kind == StageErrorFatal || se.Kind == StageErrorCanceled,
	}
}

// RunStages executes stages in order, recording timing and stopping on the
// first fatal or canceled stage.
func RunStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	logger := bs.logger()
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			se := NewCanceledStageError(st.Name, err)
			bs.Report.StageErrorKinds[st.Name] = se.Kind
			bs.Report.AddIssue(st.Name, SeverityError, se.Error(), se)
			bs.Report.RecordStageResult(st.Name, StageResultCanceled, bs.recorder())
			return se
		}

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)

		bs.Report.StageDurations[string(st.Name)] = dur
		bs.recorder().ObserveStageDuration(string(st.Name), dur)

		out := ClassifyStageResult(st.Name, err)
		if out.Error != nil {
			bs.Report.StageErrorKinds[st.Name] = out.Error.Kind
			bs.Report.AddIssue(out.Stage, out.Severity, out.Error.Error(), out.Error)
		}
		bs.Report.RecordStageResult(st.Name, out.Result, bs.recorder())

		attrs := []any{logfields.Stage(string(st.Name)), logfields.DurationMS(float64(dur) / float64(time.Millisecond))}
		switch out.Result {
		case StageResultSuccess:
			logger.Debug("Stage complete", attrs...)
		case StageResultWarning:
			logger.Warn("Stage completed with warnings", append(attrs, logfields.Error(out.Error))...)
		default:
			logger.Error("Stage failed", append(attrs, logfields.Error(out.Error))...)
		}

		if out.Abort {
			return out.Error
		}
	}
	return nil
}
