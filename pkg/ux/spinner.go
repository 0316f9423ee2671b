// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package ux

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/chelnak/ysmrr"
	"github.com/chelnak/ysmrr/pkg/animations"
	"github.com/chelnak/ysmrr/pkg/colors"
)

// UserSpinner wraps a ysmrr spinner manager that is started lazily on
// the first spinner and mirrors every state change into the log file,
// so a deployment remains traceable after the terminal output is gone.
type UserSpinner struct {
	manager ysmrr.SpinnerManager
	started bool
	mu      sync.Mutex
}

func NewUserSpinner() *UserSpinner {
	return &UserSpinner{manager: newSpinnerManager(os.Stdout)}
}

func newSpinnerManager(writer io.Writer) ysmrr.SpinnerManager {
	return ysmrr.NewSpinnerManager(
		ysmrr.WithAnimation(animations.Dots),
		ysmrr.WithSpinnerColor(colors.FgHiBlue),
		ysmrr.WithWriter(writer),
	)
}

func (us *UserSpinner) Stop() {
	us.mu.Lock()
	us.manager.Stop()
	us.mu.Unlock()
}

func (us *UserSpinner) SpinToUser(msg string, args ...interface{}) *ysmrr.Spinner {
	formatted := fmt.Sprintf(msg, args...)
	Logger.log.Infof("spinner start: %s", formatted)
	sp := us.manager.AddSpinner(formatted)
	us.mu.Lock()
	if !us.started {
		us.manager.Start()
		us.started = true
	}
	us.mu.Unlock()
	return sp
}

func SpinFailWithError(s *ysmrr.Spinner, err error) {
	s.UpdateMessage(fmt.Sprintf("%s: %v", s.GetMessage(), err))
	s.Error()
	Logger.log.Infof("spinner failed: %s", s.GetMessage())
}

func SpinComplete(s *ysmrr.Spinner) {
	if s.IsComplete() {
		return
	}
	s.Complete()
	Logger.log.Infof("spinner done: %s", s.GetMessage())
}
