package command

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/edweb-hub/edweb-learning-hub/internal/domain/learner"
	"github.com/edweb-hub/edweb-learning-hub/internal/domain/shared"
	"github.com/edweb-hub/edweb-learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER LEARNER COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// RegisterLearnerCommand contains the data for creating an account.
type RegisterLearnerCommand struct {
	// Name is the display name.
	Name string

	// Email is the unique account email.
	Email string

	// Password is the plain-text password; stored only as a bcrypt hash.
	Password string

	// Role is the account role. Defaults to "learner" when empty.
	Role string
}

// Validate validates the command.
func (c RegisterLearnerCommand) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return shared.WrapError("learner", "Register", shared.ErrInvalidInput, "name is required", nil)
	}
	if strings.TrimSpace(c.Email) == "" {
		return shared.WrapError("learner", "Register", shared.ErrInvalidInput, "email is required", nil)
	}
	if len(c.Password) < 8 {
		return learner.ErrWeakPassword
	}
	return nil
}

// RegisterLearnerResult contains the created account.
type RegisterLearnerResult struct {
	Learner *learner.Learner
}

// RegisterLearnerHandler handles the RegisterLearnerCommand.
type RegisterLearnerHandler struct {
	learnerRepo learner.Repository
	publisher   shared.EventPublisher
	log         *logger.Logger
}

// NewRegisterLearnerHandler creates a new RegisterLearnerHandler.
func NewRegisterLearnerHandler(
	learnerRepo learner.Repository,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *RegisterLearnerHandler {
	if log == nil {
		log = logger.Default()
	}

	return &RegisterLearnerHandler{
		learnerRepo: learnerRepo,
		publisher:   publisher,
		log:         log.With(logger.Component("register_learner")),
	}
}

// Handle creates the account. Duplicate email surfaces as
// shared.ErrLearnerAlreadyExists from the repository's unique constraint.
func (h *RegisterLearnerHandler) Handle(ctx context.Context, cmd RegisterLearnerCommand) (*RegisterLearnerResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	l, err := learner.NewLearner(learner.NewLearnerParams{
		ID:       uuid.NewString(),
		Name:     cmd.Name,
		Email:    cmd.Email,
		Password: cmd.Password,
		Role:     learner.Role(cmd.Role),
	})
	if err != nil {
		return nil, err
	}

	if err := h.learnerRepo.Create(ctx, l); err != nil {
		return nil, err
	}

	h.log.Info("learner registered",
		logger.LearnerID(l.ID),
		logger.String("role", string(l.Role)),
	)

	if h.publisher != nil {
		event := shared.NewLearnerRegisteredEvent(l.ID, l.Email.String(), l.Name, string(l.Role))
		if err := h.publisher.Publish(event); err != nil {
			h.log.Warn("event publish failed", logger.Err(err))
		}
	}

	return &RegisterLearnerResult{Learner: l}, nil
}
