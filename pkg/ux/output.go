// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package ux

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

var Logger *UserLog

type UserLog struct {
	log    *zap.SugaredLogger
	Writer io.Writer
}

func NewUserLog(log *zap.SugaredLogger, userwriter io.Writer) {
	if Logger == nil {
		Logger = &UserLog{
			log:    log,
			Writer: userwriter,
		}
	}
}

// PrintToUser prints msg directly on the screen, but also to log file
func (ul *UserLog) PrintToUser(msg string, args ...interface{}) {
	fmt.Print("\r\033[K") // Clear the line from the cursor position to the end
	ul.print(fmt.Sprintf(msg, args...) + "\n")
}

func (ul *UserLog) print(msg string) {
	if ul != nil {
		fmt.Fprint(ul.Writer, msg)
		ul.log.Info(msg)
	} else {
		fmt.Print(msg)
	}
}

// Info prints to the log file
func (ul *UserLog) Info(msg string, args ...interface{}) {
	ul.log.Infof(msg, args...)
}

// Error prints to the log file
func (ul *UserLog) Error(msg string, args ...interface{}) {
	ul.log.Errorf(msg, args...)
}

// GreenCheckmarkToUser prints a green checkmark to the user before the message
func (ul *UserLog) GreenCheckmarkToUser(msg string, args ...interface{}) {
	checkmark := "✓" // Unicode for checkmark symbol
	green := color.New(color.FgHiGreen).SprintFunc()
	ul.PrintToUser(green(checkmark)+" "+msg, args...)
}

func (ul *UserLog) RedXToUser(msg string, args ...interface{}) {
	xmark := "✗" // Unicode for X symbol
	red := color.New(color.FgHiRed).SprintFunc()
	ul.PrintToUser(red(xmark)+" "+msg, args...)
}

func (ul *UserLog) YellowWarnToUser(msg string, args ...interface{}) {
	yellow := color.New(color.FgHiYellow).SprintFunc()
	ul.PrintToUser(yellow("!")+" "+msg, args...)
}

func (ul *UserLog) PrintLineSeparator() {
	ul.PrintToUser("==============================================")
}
