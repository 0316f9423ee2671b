// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package prompts

import (
	"errors"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/sessionforge/starkdeploy/pkg/starknet"
)

const (
	Yes = "Yes"
	No  = "No"
)

type Prompter interface {
	CaptureAddress(promptStr string) (string, error)
	CaptureYesNo(promptStr string) (bool, error)
	CaptureNoYes(promptStr string) (bool, error)
	CaptureList(promptStr string, options []string) (string, error)
	CaptureStringAllowEmpty(promptStr string) (string, error)
	CaptureUint64(promptStr string) (uint64, error)
}

type realPrompter struct{}

// Global variable that can be replaced during testing
var promptUIRunner = func(prompt promptui.Prompt) (string, error) {
	return prompt.Run()
}

// Global variable for Select operations that can be replaced during testing
var promptUISelectRunner = func(prompt promptui.Select) (int, string, error) {
	return prompt.Run()
}

func NewPrompter() Prompter {
	return &realPrompter{}
}

func validateAddress(input string) error {
	if !starknet.IsValidAddress(input) {
		return errors.New("invalid contract address")
	}
	return nil
}

func validateUint64(input string) error {
	_, err := strconv.ParseUint(input, 10, 64)
	return err
}

func (*realPrompter) CaptureAddress(promptStr string) (string, error) {
	prompt := promptui.Prompt{
		Label:    promptStr,
		Validate: validateAddress,
	}
	return promptUIRunner(prompt)
}

func (*realPrompter) CaptureYesNo(promptStr string) (bool, error) {
	return captureYesNoOrder(promptStr, []string{Yes, No})
}

func (*realPrompter) CaptureNoYes(promptStr string) (bool, error) {
	return captureYesNoOrder(promptStr, []string{No, Yes})
}

func captureYesNoOrder(promptStr string, options []string) (bool, error) {
	prompt := promptui.Select{
		Label: promptStr,
		Items: options,
	}
	_, decision, err := promptUISelectRunner(prompt)
	if err != nil {
		return false, err
	}
	return decision == Yes, nil
}

func (*realPrompter) CaptureList(promptStr string, options []string) (string, error) {
	prompt := promptui.Select{
		Label: promptStr,
		Items: options,
	}
	_, listDecision, err := promptUISelectRunner(prompt)
	return listDecision, err
}

func (*realPrompter) CaptureStringAllowEmpty(promptStr string) (string, error) {
	prompt := promptui.Prompt{
		Label: promptStr,
	}
	return promptUIRunner(prompt)
}

func (*realPrompter) CaptureUint64(promptStr string) (uint64, error) {
	prompt := promptui.Prompt{
		Label:    promptStr,
		Validate: validateUint64,
	}
	input, err := promptUIRunner(prompt)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(input, 10, 64)
}
