package service

type StepOutcome string

const (
	StepOk         StepOutcome = "ok"
	StepSoftFailed StepOutcome = "soft_failed"
	StepHardFailed StepOutcome = "hard_failed"
)

// StepResult is the outcome of one step of a scheduling or sweep pass over a single user.
type StepResult struct {
	UserId  string
	Step    string
	Outcome StepOutcome
	Err     error
}

func OkStep(userId string, step string) StepResult {
	return StepResult{UserId: userId, Step: step, Outcome: StepOk}
}

func SoftFailedStep(userId string, step string, err error) StepResult {
	return StepResult{UserId: userId, Step: step, Outcome: StepSoftFailed, Err: err}
}

func HardFailedStep(userId string, step string, err error) StepResult {
	return StepResult{UserId: userId, Step: step, Outcome: StepHardFailed, Err: err}
}

func (s StepResult) Failed() bool {
	return s.Outcome != StepOk
}

func (s StepResult) ErrorText() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}
