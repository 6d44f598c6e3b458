package service

import (
	"context"
	"errors"

	"haskify-be/internal/dto"
	"haskify-be/internal/pkg/logger"
	"haskify-be/pkg/runner"
)

type IRunnerService interface {
	Run(ctx context.Context, req *dto.RunCodeRequest) (*dto.RunCodeResponse, error)
}

type runnerService struct {
	runner *runner.Runner
	logger logger.ILogger
}

func NewRunnerService(r *runner.Runner, logger logger.ILogger) IRunnerService {
	return &runnerService{runner: r, logger: logger}
}

// Run executes a snippet. Rejected code returns runner.ErrInvalidCode or
// runner.ErrBlockedCode; a timeout returns runner.ErrTimeout.
func (s *runnerService) Run(ctx context.Context, req *dto.RunCodeRequest) (*dto.RunCodeResponse, error) {
	result, err := s.runner.Run(ctx, req.Code, req.Input)
	if err != nil {
		if !errors.Is(err, runner.ErrTimeout) {
			s.logger.Error("RUNNER", "Execution failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil, err
	}

	s.logger.Debug("RUNNER", "Snippet executed", map[string]interface{}{
		"exit_code":   result.ExitCode,
		"duration_ms": result.Duration.Milliseconds(),
	})
	return &dto.RunCodeResponse{Output: result.Output()}, nil
}
