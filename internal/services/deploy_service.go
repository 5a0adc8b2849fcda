package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"cdr.dev/slog/v3"
)

const signaturePrefix = "sha256="

var ErrInvalidSignature = errors.New("invalid webhook signature")

// Runner executes a command in dir and returns its combined output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// DeployService pulls the checked out source when a signed push webhook
// arrives.
type DeployService struct {
	secret []byte
	dir    string
	runner Runner
	logger slog.Logger
}

func NewDeployService(secret, dir string, runner Runner, logger slog.Logger) *DeployService {
	return &DeployService{
		secret: []byte(secret),
		dir:    dir,
		runner: runner,
		logger: logger.Named("deploy"),
	}
}

// Verify checks an X-Hub-Signature-256 header against the payload. An empty
// secret rejects every request.
func (s *DeployService) Verify(payload []byte, header string) error {
	if len(s.secret) == 0 || !strings.HasPrefix(header, signaturePrefix) {
		return ErrInvalidSignature
	}
	got, err := hex.DecodeString(strings.TrimPrefix(header, signaturePrefix))
	if err != nil {
		return ErrInvalidSignature
	}
	if !hmac.Equal(got, Sign(s.secret, payload)) {
		return ErrInvalidSignature
	}
	return nil
}

func Sign(secret, payload []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return mac.Sum(nil)
}

func (s *DeployService) Pull(ctx context.Context) (string, error) {
	out, err := s.runner.Run(ctx, s.dir, "git", "pull")
	if err != nil {
		s.logger.Error(ctx, "git pull failed", slog.Error(err), slog.F("output", string(out)))
		return string(out), fmt.Errorf("failed to pull: %w", err)
	}
	s.logger.Info(ctx, "git pull complete", slog.F("output", strings.TrimSpace(string(out))))
	return string(out), nil
}
