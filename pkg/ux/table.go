// Copyright (C) 2025, Sessionforge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package ux

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// DefaultTable is the shared style for deployment summaries and record
// listings: rounded borders, centered title, one row per contract.
func DefaultTable(title string, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Title.Align = text.AlignCenter
	t.Style().Options.SeparateRows = true
	t.SetTitle(title)
	if header != nil {
		t.AppendHeader(header)
	}
	return t
}
