package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/groupmute/groupmute/internal/biz/domain"
	"github.com/groupmute/groupmute/internal/biz/repo"
)

var (
	ErrEventNotFound    = errors.New("notification not found")
	ErrActionOutOfRange = errors.New("action index out of range")
	ErrNoRemoteInputs   = errors.New("action has no remote inputs")
)

// ReplayUsecase replays user interactions on cached notifications
type ReplayUsecase struct {
	state    *ListenerState
	platform repo.NotificationPlatform
}

// NewReplayUsecase creates a new replay usecase
func NewReplayUsecase(state *ListenerState, platform repo.NotificationPlatform) *ReplayUsecase {
	return &ReplayUsecase{state: state, platform: platform}
}

func (uc *ReplayUsecase) lookup(id string) (*domain.NotificationEvent, error) {
	event, ok := uc.state.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	return event, nil
}

// Tap opens the notification
func (uc *ReplayUsecase) Tap(ctx context.Context, id string) error {
	event, err := uc.lookup(id)
	if err != nil {
		return err
	}
	return uc.platform.SendContent(ctx, event)
}

// TapAction invokes the action at index
func (uc *ReplayUsecase) TapAction(ctx context.Context, id string, index int) error {
	event, err := uc.lookup(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(event.NativeActions) {
		return fmt.Errorf("%w: %d of %d", ErrActionOutOfRange, index, len(event.NativeActions))
	}
	return uc.platform.SendAction(ctx, event, index, nil)
}

// SendInput fills the action's remote inputs from data and invokes it.
// Keys in data that the action does not accept are ignored.
func (uc *ReplayUsecase) SendInput(ctx context.Context, id string, index int, data map[string]string) error {
	event, err := uc.lookup(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(event.NativeActions) {
		return fmt.Errorf("%w: %d of %d", ErrActionOutOfRange, index, len(event.NativeActions))
	}

	action := event.NativeActions[index]
	if len(action.RemoteInputs) == 0 {
		return fmt.Errorf("%w: %q", ErrNoRemoteInputs, action.Title)
	}

	inputs := make(map[string]string, len(action.RemoteInputs))
	for _, key := range action.RemoteInputs {
		if v, ok := data[key]; ok {
			inputs[key] = v
		}
	}
	return uc.platform.SendAction(ctx, event, index, inputs)
}
