package plugin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ayusman/mudra/internal/actuator"
)

// Keyboard is the plugin that types keys through OS automation.
const Keyboard = "keyboard"

// KeystrokeParams are the params of the keystroke and shortcut actions.
type KeystrokeParams struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers,omitempty"`
}

// Keys implements actuator.KeyTyper through the keyboard plugin.
type Keys struct {
	manager  *Manager
	executor *Executor
}

var _ actuator.KeyTyper = (*Keys)(nil)

// NewKeys creates a Keys backed by the manager's keyboard plugin.
func NewKeys(manager *Manager, executor *Executor) *Keys {
	return &Keys{manager: manager, executor: executor}
}

// TypeKey sends a keystroke, or a shortcut when modifiers are given.
func (k *Keys) TypeKey(key string, modifiers ...string) error {
	p, err := k.manager.Get(Keyboard)
	if err != nil {
		return fmt.Errorf("%s plugin: %w", Keyboard, actuator.ErrUnavailable)
	}

	action := "keystroke"
	if len(modifiers) > 0 {
		action = "shortcut"
	}
	params, err := json.Marshal(KeystrokeParams{Key: key, Modifiers: modifiers})
	if err != nil {
		return err
	}

	resp, err := k.executor.Execute(context.Background(), p, &Request{
		Action: action,
		Mode:   "keyboard",
		Params: params,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s %s: %s", Keyboard, action, resp.Error)
	}
	return nil
}
